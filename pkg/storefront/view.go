package storefront

// View is the rendering surface driven by the pager, cart and poller.
// Implementations must be safe to call from the goroutine that issued the
// triggering operation.
type View interface {
	Render(products []Product, replace bool)
	Clear()
	Notify(message string, isError bool)
	ShowEndOfResults()
	ShowNoResults()
	ScrollToResults()
	RenderCart(items []CartItem)
	Reload()
	LoggedOut()
}

// NopView discards everything. Embed it to implement only what you need.
type NopView struct{}

func (NopView) Render([]Product, bool) {}
func (NopView) Clear()                 {}
func (NopView) Notify(string, bool)    {}
func (NopView) ShowEndOfResults()      {}
func (NopView) ShowNoResults()         {}
func (NopView) ScrollToResults()       {}
func (NopView) RenderCart([]CartItem)  {}
func (NopView) Reload()                {}
func (NopView) LoggedOut()             {}
