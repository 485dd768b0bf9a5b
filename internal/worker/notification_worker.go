package worker

// HandlerRegistrar is a service that reacts to domain events.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// StartEventHandlers subscribes every registrar to the dispatcher it was built with.
func StartEventHandlers(registrars ...HandlerRegistrar) {
	for _, r := range registrars {
		if r == nil {
			continue
		}
		r.RegisterHandlers()
	}
}
