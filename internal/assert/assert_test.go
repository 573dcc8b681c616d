package assert

import "testing"

func TestLength(t *testing.T) {
	Length("01HZX3V5Q6W7E8R9T0Y1U2I3O4", 26)

	defer func() {
		if recover() == nil {
			t.Error("Length() should panic on a short value")
		}
	}()
	Length("short", 26)
}
