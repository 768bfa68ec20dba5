package oscrec

import "sync"

// NewDisplayChannel returns a display channel to pass to WithDisplay or
// RecordDisplay, the read side for the consumer, and a drain function that
// discards whatever is still buffered after shutdown. The session never
// closes the channel; the caller stops reading when the session is done.
func NewDisplayChannel(buffer int) (chan<- DisplayEvent, <-chan DisplayEvent, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan DisplayEvent, buffer)

	var once sync.Once
	drain := func() {
		once.Do(func() {
			for {
				select {
				case <-ch:
				default:
					return
				}
			}
		})
	}
	return ch, ch, drain
}

// NewDisplayFunc adapts a callback into a display channel: a pump goroutine
// reads events and invokes fn for each. The returned stop function ends the
// pump and waits for the in-flight callback to return.
func NewDisplayFunc(buffer int, fn func(DisplayEvent)) (chan<- DisplayEvent, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan DisplayEvent, buffer)
	stopCh := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-stopCh:
				return
			case ev := <-ch:
				if fn != nil {
					fn(ev)
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(stopCh)
			<-done
		})
	}
	return ch, stop
}
