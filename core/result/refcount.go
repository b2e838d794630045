package result

// Base is the reference-counting header payloads embed as their first field.
// Release, when set, runs when a decrement brings the count to zero; it
// is only needed when the payload holds other counted values that must be
// released in turn.
type Base struct {
	count   uint64
	Release func(data any)
}

// Header lets the generic counting functions reach the embedded Base.
func (b *Base) Header() *Base { return b }

// Count returns the current reference count. Tests use it to check balance.
func (b *Base) Count() uint64 { return b.count }

// Counted is implemented by any payload that embeds Base.
type Counted interface {
	Header() *Base
}

// IncCounted increments a payload's reference count directly. Builders that
// link payloads to each other outside a Value use it.
func IncCounted(data Counted) { data.Header().count++ }

// DecCounted decrements a payload's reference count, running its Release
// hook when the count reaches zero.
func DecCounted(data Counted) {
	b := data.Header()
	b.count--
	if b.count == 0 && b.Release != nil {
		b.Release(data)
	}
}

func countedInc(data any) { IncCounted(data.(Counted)) }
func countedDec(data any) { DecCounted(data.(Counted)) }

// AssignCounted stores a freshly allocated counted payload in v with a
// count of one, wiring the generic increment and decrement functions.
func AssignCounted(v *Value, data Counted, print PrintFunc) {
	data.Header().count = 1
	oldDec := v.dec
	oldData := v.Data
	v.Data = data
	v.inc = countedInc
	v.dec = countedDec
	v.print = print
	if oldDec != nil && oldData != nil {
		oldDec(oldData)
	}
}
