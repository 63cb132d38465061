package component

// EntityKind is the closed set of entity variants.
type EntityKind uint8

const (
	KindCraft EntityKind = iota + 1
	KindBeacon
)

func (k EntityKind) String() string {
	switch k {
	case KindCraft:
		return "craft"
	case KindBeacon:
		return "beacon"
	default:
		return "unknown"
	}
}

type Kind struct {
	Kind EntityKind
	Name string
}

var KindComponent = NewComponent[Kind]()
