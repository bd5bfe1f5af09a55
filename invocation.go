package weft

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// InvocationStatus reports how a host-method invocation ended
type InvocationStatus int

const (
	InvocationStatusRunning InvocationStatus = iota
	InvocationStatusSuccess
	InvocationStatusFailed
	InvocationStatusPanicked
)

func (s InvocationStatus) String() string {
	switch s {
	case InvocationStatusRunning:
		return "running"
	case InvocationStatusSuccess:
		return "success"
	case InvocationStatusFailed:
		return "failed"
	case InvocationStatusPanicked:
		return "panicked"
	}
	return "unknown"
}

var (
	methodTag     = NewTag[string]("invocation.method")
	startTimeTag  = NewTag[time.Time]("invocation.start_time")
	endTimeTag    = NewTag[time.Time]("invocation.end_time")
	statusTag     = NewTag[InvocationStatus]("invocation.status")
	errorTag      = NewTag[error]("invocation.error")
	argsTag       = NewTag[map[string]any]("invocation.args")
	outputTag     = NewTag[any]("invocation.output")
	panicStackTag = NewTag[[]byte]("invocation.panic_stack")
)

func MethodName() Tag[string]          { return methodTag }
func StartTime() Tag[time.Time]        { return startTimeTag }
func EndTime() Tag[time.Time]          { return endTimeTag }
func Status() Tag[InvocationStatus]    { return statusTag }
func ErrorTag() Tag[error]             { return errorTag }
func ArgsSnapshot() Tag[map[string]any] { return argsTag }
func Output() Tag[any]                 { return outputTag }
func PanicStack() Tag[[]byte]          { return panicStackTag }

// Invocation represents one in-progress call to a wrapped host method.
// It links to the enclosing invocation when host methods nest and carries
// tagged metadata that finalizes into an InvocationNode.
type Invocation struct {
	id          string
	method      string
	instance    any
	set         *CallbackSet
	parent      *Invocation
	registry    *Registry
	data        map[any]any
	pendingPost string
}

// ID returns the invocation's unique identifier
func (inv *Invocation) ID() string {
	return inv.id
}

// Method returns the host method name
func (inv *Invocation) Method() string {
	return inv.method
}

// Instance returns the host instance the method was called on
func (inv *Invocation) Instance() any {
	return inv.instance
}

// Set stores a tagged metadata value on the invocation
func (inv *Invocation) Set(tag any, value any) {
	inv.data[tag] = value
}

// Get retrieves a tagged metadata value from the invocation
func (inv *Invocation) Get(tag any) (any, bool) {
	v, ok := inv.data[tag]
	return v, ok
}

// GetFromParent looks up a tag in the enclosing invocation chain
func (inv *Invocation) GetFromParent(tag any) (any, bool) {
	current := inv.parent
	for current != nil {
		if v, ok := current.data[tag]; ok {
			return v, true
		}
		current = current.parent
	}
	return nil, false
}

// Lookup searches the invocation, then its ancestors
func (inv *Invocation) Lookup(tag any) (any, bool) {
	if v, ok := inv.Get(tag); ok {
		return v, true
	}
	return inv.GetFromParent(tag)
}

// Parent returns the enclosing invocation, or nil at the top of the stack
func (inv *Invocation) Parent() *Invocation {
	return inv.parent
}

// CallbackSet returns the callback set resolved for this invocation
func (inv *Invocation) CallbackSet() *CallbackSet {
	return inv.set
}

func newInvocation(r *Registry, method string, instance any, set *CallbackSet, parent *Invocation) *Invocation {
	return &Invocation{
		id:       uuid.NewString(),
		method:   method,
		instance: instance,
		set:      set,
		parent:   parent,
		registry: r,
		data:     make(map[any]any),
	}
}

func (inv *Invocation) finalize() *InvocationNode {
	parentID := ""
	if inv.parent != nil {
		parentID = inv.parent.id
	}

	node := &InvocationNode{
		ID:       inv.id,
		ParentID: parentID,
		Method:   inv.method,
		Tags:     make(map[any]any, len(inv.data)),
	}

	for k, v := range inv.data {
		node.Tags[k] = v
	}

	return node
}

// InvocationNode is the immutable record of a finished invocation
type InvocationNode struct {
	ID       string
	ParentID string
	Method   string
	Tags     map[any]any
}

func (n *InvocationNode) GetTag(tag any) (any, bool) {
	v, ok := n.Tags[tag]
	return v, ok
}

func (n *InvocationNode) GetAllTags() map[any]any {
	return n.Tags
}

// InvocationTree stores finished invocations with parent links, bounded by
// evicting the oldest root (and its subtree) when the limit is exceeded
type InvocationTree struct {
	mu       sync.RWMutex
	nodes    map[string]*InvocationNode
	byParent map[string][]string
	roots    []string
	limit    int
}

func newInvocationTree(limit int) *InvocationTree {
	return &InvocationTree{
		nodes:    make(map[string]*InvocationNode),
		byParent: make(map[string][]string),
		roots:    []string{},
		limit:    limit,
	}
}

func (t *InvocationTree) addNode(node *InvocationNode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes[node.ID] = node

	if node.ParentID == "" {
		t.roots = append(t.roots, node.ID)
	} else {
		t.byParent[node.ParentID] = append(t.byParent[node.ParentID], node.ID)
	}

	if len(t.nodes) > t.limit {
		t.evictOldest()
	}
}

func (t *InvocationTree) evictOldest() {
	if len(t.roots) == 0 {
		return
	}

	oldestRoot := t.roots[0]
	t.roots = t.roots[1:]

	t.removeSubtree(oldestRoot)
}

func (t *InvocationTree) removeSubtree(nodeID string) {
	delete(t.nodes, nodeID)

	children := t.byParent[nodeID]
	delete(t.byParent, nodeID)

	for _, childID := range children {
		t.removeSubtree(childID)
	}
}

func (t *InvocationTree) GetNode(id string) *InvocationNode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes[id]
}

func (t *InvocationTree) GetChildren(id string) []*InvocationNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	childIDs := t.byParent[id]
	children := make([]*InvocationNode, 0, len(childIDs))
	for _, childID := range childIDs {
		if node := t.nodes[childID]; node != nil {
			children = append(children, node)
		}
	}
	return children
}

func (t *InvocationTree) GetRoots() []*InvocationNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	roots := make([]*InvocationNode, 0, len(t.roots))
	for _, rootID := range t.roots {
		if node := t.nodes[rootID]; node != nil {
			roots = append(roots, node)
		}
	}
	return roots
}

func (t *InvocationTree) Filter(predicate func(*InvocationNode) bool) []*InvocationNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []*InvocationNode
	for _, node := range t.nodes {
		if predicate(node) {
			result = append(result, node)
		}
	}
	return result
}

func (t *InvocationTree) Walk(rootID string, visitor func(*InvocationNode) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	t.walkUnlocked(rootID, visitor)
}

func (t *InvocationTree) walkUnlocked(nodeID string, visitor func(*InvocationNode) bool) {
	node := t.nodes[nodeID]
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for _, childID := range t.byParent[nodeID] {
		t.walkUnlocked(childID, visitor)
	}
}
