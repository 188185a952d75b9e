package usecase

import (
	"fmt"

	"StockMon/pkg/signal"
)

// Wire connects the service, processor and view model:
//
//	service.PriceUpdated           -> processor.OnPriceUpdated (async)
//	processor.PriceProcessed       -> viewModel.OnPriceProcessed
//	processor.AlertTriggered       -> viewModel.OnAlertTriggered
//	processor.AlertSettingsChanged -> viewModel.OnAlertSettingsChanged
//	viewModel.SetAlert             -> processor.OnSetAlert
//	viewModel.RemoveAlert          -> processor.OnRemoveAlert
func Wire(svc *StockService, proc *StockProcessor, vm *StockViewModel) error {
	if _, err := signal.Connect(svc.PriceUpdated, proc, signal.Async((*StockProcessor).OnPriceUpdated)); err != nil {
		return fmt.Errorf("wire price_updated: %w", err)
	}
	if _, err := signal.Connect(proc.PriceProcessed, vm, signal.Sync((*StockViewModel).OnPriceProcessed)); err != nil {
		return fmt.Errorf("wire price_processed: %w", err)
	}
	if _, err := signal.Connect(proc.AlertTriggered, vm, signal.Sync((*StockViewModel).OnAlertTriggered)); err != nil {
		return fmt.Errorf("wire alert_triggered: %w", err)
	}
	if _, err := signal.Connect(proc.AlertSettingsChanged, vm, signal.Sync((*StockViewModel).OnAlertSettingsChanged)); err != nil {
		return fmt.Errorf("wire alert_settings_changed: %w", err)
	}
	if _, err := signal.Connect(vm.SetAlert, proc, signal.Sync((*StockProcessor).OnSetAlert)); err != nil {
		return fmt.Errorf("wire set_alert: %w", err)
	}
	if _, err := signal.Connect(vm.RemoveAlert, proc, signal.Sync((*StockProcessor).OnRemoveAlert)); err != nil {
		return fmt.Errorf("wire remove_alert: %w", err)
	}
	return nil
}
