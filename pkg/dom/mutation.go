package dom

// MutationOp is the type of tree mutation.
type MutationOp uint8

const (
	MutationInsertNode  MutationOp = 0x01 // Node inserted under ParentID
	MutationRemoveNode  MutationOp = 0x02 // Node detached
	MutationAddClass    MutationOp = 0x03 // Classes added
	MutationRemoveClass MutationOp = 0x04 // Classes removed
	MutationSetText     MutationOp = 0x05 // Children replaced by text
	MutationSetAttr     MutationOp = 0x06 // Attribute set
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case MutationInsertNode:
		return "InsertNode"
	case MutationRemoveNode:
		return "RemoveNode"
	case MutationAddClass:
		return "AddClass"
	case MutationRemoveClass:
		return "RemoveClass"
	case MutationSetText:
		return "SetText"
	case MutationSetAttr:
		return "SetAttr"
	default:
		return "Unknown"
	}
}

// Mutation describes a single change to a connected node.
type Mutation struct {
	Op       MutationOp
	ID       string   // Target node
	ParentID string   // For InsertNode
	BeforeID string   // For InsertNode; empty means append
	Node     *Node    // For InsertNode
	Classes  []string // For AddClass/RemoveClass
	Key      string   // For SetAttr
	Value    string   // For SetAttr and SetText
}

// Observer receives mutations in the order they happen.
type Observer func(Mutation)
