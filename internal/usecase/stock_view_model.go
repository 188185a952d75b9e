package usecase

import (
	"sync"

	"StockMon/internal/domain/models"
	"StockMon/pkg/logger"
	"StockMon/pkg/signal"
)

// StockViewModel caches business state for the console. It lives on the
// foreground loop; the console reads it and asks for changes through its
// outbound signals.
type StockViewModel struct {
	*signal.Object

	PricesUpdated *signal.Signal[models.PriceMap]
	SetAlert      *signal.Signal[models.AlertRequest]
	RemoveAlert   *signal.Signal[string]

	log *logger.Logger

	mu         sync.RWMutex
	prices     models.PriceMap
	alerts     map[string]models.AlertSetting
	lastAlerts map[string]models.AlertEvent
}

func NewStockViewModel(loop *signal.Loop, log *logger.Logger) *StockViewModel {
	if log == nil {
		log = logger.Nop()
	}
	vm := &StockViewModel{
		Object:     signal.NewObject(loop),
		log:        log.Component("view_model"),
		prices:     make(models.PriceMap),
		alerts:     make(map[string]models.AlertSetting),
		lastAlerts: make(map[string]models.AlertEvent),
	}
	vm.PricesUpdated = signal.New[models.PriceMap](vm.Object, "view_model.prices_updated")
	vm.SetAlert = signal.New[models.AlertRequest](vm.Object, "view_model.set_alert")
	vm.RemoveAlert = signal.New[string](vm.Object, "view_model.remove_alert")
	return vm
}

// OnPriceProcessed replaces the price cache and re-emits the snapshot.
func (vm *StockViewModel) OnPriceProcessed(prices models.PriceMap) error {
	vm.mu.Lock()
	vm.prices = prices.Clone()
	vm.mu.Unlock()

	vm.PricesUpdated.Emit(prices.Clone())
	return nil
}

// OnAlertTriggered keeps the latest alert per code.
func (vm *StockViewModel) OnAlertTriggered(e models.AlertEvent) error {
	vm.mu.Lock()
	vm.lastAlerts[e.Code] = e
	vm.mu.Unlock()
	vm.log.Debug("alert received", logger.String("alert", e.String()))
	return nil
}

// OnAlertSettingsChanged mirrors a business-side setting change. An empty
// setting removes the code.
func (vm *StockViewModel) OnAlertSettingsChanged(s models.AlertSetting) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if s.Empty() {
		delete(vm.alerts, s.Code)
		delete(vm.lastAlerts, s.Code)
		return nil
	}
	vm.alerts[s.Code] = s
	return nil
}

func (vm *StockViewModel) CurrentPrices() models.PriceMap {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.prices.Clone()
}

func (vm *StockViewModel) AlertSettings() map[string]models.AlertSetting {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make(map[string]models.AlertSetting, len(vm.alerts))
	for k, v := range vm.alerts {
		out[k] = v
	}
	return out
}

// LastAlert returns the most recent business alert for code.
func (vm *StockViewModel) LastAlert(code string) (models.AlertEvent, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	e, ok := vm.lastAlerts[code]
	return e, ok
}

func (vm *StockViewModel) EmitSetAlert(code string, lower, upper float64) {
	vm.SetAlert.Emit(models.AlertRequest{Code: code, Lower: lower, Upper: upper})
}

func (vm *StockViewModel) EmitRemoveAlert(code string) {
	vm.RemoveAlert.Emit(code)
}
