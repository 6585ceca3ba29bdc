package engine

// Observer receives engine notifications on the owning goroutine.
type Observer interface {
	ProgressChanged(report Report)
	NavigationChanged(nav NavState)
	// Loaded fires once record values have been applied, or immediately
	// after initial population for new records.
	Loaded()
	LoadFailed(err error)
}

// NopObserver ignores every notification. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) ProgressChanged(Report)     {}
func (NopObserver) NavigationChanged(NavState) {}
func (NopObserver) Loaded()                    {}
func (NopObserver) LoadFailed(error)           {}

type observers []Observer

func (o observers) progress(r Report) {
	for _, obs := range o {
		obs.ProgressChanged(r)
	}
}

func (o observers) navigation(n NavState) {
	for _, obs := range o {
		obs.NavigationChanged(n)
	}
}

func (o observers) loaded() {
	for _, obs := range o {
		obs.Loaded()
	}
}

func (o observers) failed(err error) {
	for _, obs := range o {
		obs.LoadFailed(err)
	}
}
