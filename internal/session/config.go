package session

import "github.com/getpassword/getpassword-go/internal/crypto"

// configHolder owns the generation config and notifies a single callback on
// every effective change. The callback sees the new value already in place.
type configHolder struct {
	opts     crypto.GeneratorOptions
	onChange func(crypto.GeneratorOptions) error
}

// update applies mut to a copy of the config, clamps it and, if anything
// changed, stores it and runs the callback. A failing callback restores the
// previous config.
func (h *configHolder) update(mut func(*crypto.GeneratorOptions)) (bool, error) {
	prev := h.opts
	next := prev
	mut(&next)
	next = next.Normalize()

	if next == prev {
		return false, nil
	}

	h.opts = next
	if err := h.onChange(next); err != nil {
		h.opts = prev
		return false, err
	}
	return true, nil
}
