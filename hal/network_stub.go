package hal

type nullNetwork struct{}

// NullNetwork returns a NIC with no link: nothing can be sent or received.
func NullNetwork() Network { return nullNetwork{} }

func (nullNetwork) Transmit(frame []byte) error {
	_ = frame
	return ErrNotImplemented
}

func (nullNetwork) Receive(frame []byte) (int, error) {
	_ = frame
	return 0, ErrNotImplemented
}

func (nullNetwork) CanSend() bool { return false }
func (nullNetwork) CanRecv() bool { return false }
