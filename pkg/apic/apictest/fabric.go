// Package apictest provides an in-memory apic.Directory for tests.
package apictest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/carverauto/portradar/pkg/apic"
	"github.com/carverauto/portradar/pkg/dn"
	"github.com/carverauto/portradar/pkg/models"
)

// SelectorSpec describes one range selector of an interface profile.
type SelectorSpec struct {
	Name        string
	PolicyGroup string
	Blocks      []models.PortBlock
}

// Selector is shorthand for building a SelectorSpec.
func Selector(name, policyGroup string, blocks ...models.PortBlock) SelectorSpec {
	return SelectorSpec{Name: name, PolicyGroup: policyGroup, Blocks: blocks}
}

// Fabric is a thread-safe fake controller. Objects are indexed by DN and
// returned from QueryClass in insertion order. Commits apply deletes.
type Fabric struct {
	mu sync.RWMutex

	pod     string
	roots   []string
	objects map[string]*apic.Object
	parents map[string]string

	lookups    map[string]int
	lookupErrs map[string]error
	queryErrs  map[string]error
	commitErr  error
	commits    [][]apic.MutationIntent
}

var _ apic.Directory = (*Fabric)(nil)

// NewFabric returns an empty fabric in pod 1.
func NewFabric() *Fabric {
	return &Fabric{
		pod:        "1",
		objects:    make(map[string]*apic.Object),
		parents:    make(map[string]string),
		lookups:    make(map[string]int),
		lookupErrs: make(map[string]error),
		queryErrs:  make(map[string]error),
	}
}

// Pod returns the pod DNs are built for.
func (f *Fabric) Pod() string {
	return f.pod
}

// SetPortStatus creates or replaces the physical interface status object of
// node/iface.
func (f *Fabric) SetPortStatus(node, iface, status string) {
	portDN := dn.PhysicalPortDN(f.pod, node, iface)
	obj := apic.NewObject(apic.ClassPhysIfStatus, portDN, map[string]string{"operSt": status})

	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(obj, "")
}

// RemovePort deletes the status object of node/iface.
func (f *Fabric) RemovePort(node, iface string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.remove(dn.PhysicalPortDN(f.pod, node, iface))
}

// AddBinding adds a static path binding of tenant/app/epg onto node/iface.
func (f *Fabric) AddBinding(b models.EndpointGroupBinding, node, iface string) string {
	bindingDN := dn.BindingDN(b, f.pod, node, iface)
	obj := apic.NewObject(apic.ClassPathBinding, bindingDN, map[string]string{
		"tDn":   dn.PathDN(f.pod, node, iface),
		"encap": "vlan-100",
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(obj, "")

	return bindingDN
}

// AddRawObject adds an arbitrary top level object, e.g. a malformed one.
func (f *Fabric) AddRawObject(obj *apic.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(obj, "")
}

// AddInterfaceProfile adds an infraAccPortP subtree.
func (f *Fabric) AddInterfaceProfile(name string, selectors ...SelectorSpec) {
	profileDN := "uni/infra/accportprof-" + name

	children := make([]*apic.Object, 0, len(selectors))

	for _, s := range selectors {
		selDN := dn.SelectorDN(name, s.Name)

		var selChildren []*apic.Object

		for i, b := range s.Blocks {
			selChildren = append(selChildren, apic.NewObject(apic.ClassPortBlock,
				fmt.Sprintf("%s/portblk-block%d", selDN, i+1),
				map[string]string{
					"name":     fmt.Sprintf("block%d", i+1),
					"fromCard": strconv.Itoa(models.DefaultCard),
					"toCard":   strconv.Itoa(models.DefaultCard),
					"fromPort": strconv.Itoa(b.From),
					"toPort":   strconv.Itoa(b.To),
				}))
		}

		if s.PolicyGroup != "" {
			selChildren = append(selChildren, apic.NewObject(apic.ClassPolicyGroupRef,
				selDN+"/rsaccBaseGrp",
				map[string]string{"tDn": "uni/infra/funcprof/accportgrp-" + s.PolicyGroup}))
		}

		children = append(children, apic.NewObject(apic.ClassPortSelector, selDN,
			map[string]string{"name": s.Name}, selChildren...))
	}

	obj := apic.NewObject(apic.ClassInterfaceProfile, profileDN, map[string]string{"name": name}, children...)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(obj, "")
}

// AddSwitchProfile adds an infraNodeP subtree with one leaf selector holding
// the node blocks and one port profile relation per interface profile.
func (f *Fabric) AddSwitchProfile(name string, blocks []models.NodeBlock, interfaceProfiles ...string) {
	profileDN := "uni/infra/nprof-" + name
	leafDN := profileDN + "/leaves-" + name + "-typ-range"

	nodeBlocks := make([]*apic.Object, 0, len(blocks))
	for i, b := range blocks {
		nodeBlocks = append(nodeBlocks, apic.NewObject(apic.ClassNodeBlock,
			fmt.Sprintf("%s/nodeblk-blk%d", leafDN, i+1),
			map[string]string{"from_": strconv.Itoa(b.From), "to_": strconv.Itoa(b.To)}))
	}

	children := []*apic.Object{
		apic.NewObject(apic.ClassLeafSelector, leafDN, map[string]string{"name": name}, nodeBlocks...),
	}

	for _, ip := range interfaceProfiles {
		target := "uni/infra/accportprof-" + ip
		children = append(children, apic.NewObject(apic.ClassProfileLink,
			profileDN+"/rsaccPortP-["+target+"]",
			map[string]string{"tDn": target}))
	}

	obj := apic.NewObject(apic.ClassSwitchProfile, profileDN, map[string]string{"name": name}, children...)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(obj, "")
}

// FailLookup makes LookupDN of dn return err.
func (f *Fabric) FailLookup(dn string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lookupErrs[dn] = err
}

// FailQuery makes QueryClass of class return err.
func (f *Fabric) FailQuery(class string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryErrs[class] = err
}

// FailCommit makes every Commit return err without applying anything.
func (f *Fabric) FailCommit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commitErr = err
}

// Has reports whether an object with the given DN exists.
func (f *Fabric) Has(dn string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.objects[dn]

	return ok
}

// Lookups returns how many times dn was looked up.
func (f *Fabric) Lookups(dn string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.lookups[dn]
}

// Commits returns the intents of every successful commit.
func (f *Fabric) Commits() [][]apic.MutationIntent {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([][]apic.MutationIntent, len(f.commits))
	copy(out, f.commits)

	return out
}

// QueryClass implements apic.Directory. The subtree argument is ignored;
// objects always carry their children.
func (f *Fabric) QueryClass(_ context.Context, class string, _ apic.Subtree) ([]*apic.Object, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.queryErrs[class]; err != nil {
		return nil, err
	}

	var out []*apic.Object

	for _, rootDN := range f.roots {
		f.collect(f.objects[rootDN], class, &out)
	}

	return out, nil
}

// LookupDN implements apic.Directory.
func (f *Fabric) LookupDN(_ context.Context, dn string) (*apic.Object, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lookups[dn]++

	if err := f.lookupErrs[dn]; err != nil {
		return nil, false, err
	}

	obj, ok := f.objects[dn]

	return obj, ok, nil
}

// Commit implements apic.Directory. Deleted objects disappear together
// with their subtree.
func (f *Fabric) Commit(_ context.Context, req *apic.ConfigRequest) error {
	if req.Len() == 0 {
		return apic.ErrEmptyBatch
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.commitErr != nil {
		return f.commitErr
	}

	intents := req.Intents()
	for _, in := range intents {
		if in.Status == apic.StatusDeleted {
			f.remove(in.DN)
		}
	}

	f.commits = append(f.commits, intents)

	return nil
}

func (f *Fabric) collect(obj *apic.Object, class string, out *[]*apic.Object) {
	if obj == nil {
		return
	}

	if obj.Class == class {
		*out = append(*out, obj)
		return
	}

	for _, child := range obj.Children {
		f.collect(child, class, out)
	}
}

// put must be called with f.mu held.
func (f *Fabric) put(obj *apic.Object, parent string) {
	if _, exists := f.objects[obj.DN]; exists && parent == "" {
		f.replaceRoot(obj)
	} else if parent == "" {
		f.roots = append(f.roots, obj.DN)
	}

	f.objects[obj.DN] = obj

	if parent != "" {
		f.parents[obj.DN] = parent
	}

	for _, child := range obj.Children {
		f.put(child, obj.DN)
	}
}

func (f *Fabric) replaceRoot(obj *apic.Object) {
	for _, child := range f.objects[obj.DN].Children {
		f.forget(child)
	}
}

// remove must be called with f.mu held.
func (f *Fabric) remove(dn string) {
	obj, ok := f.objects[dn]
	if !ok {
		return
	}

	f.forget(obj)

	parentDN, hasParent := f.parents[dn]
	delete(f.parents, dn)

	if !hasParent {
		for i, r := range f.roots {
			if r == dn {
				f.roots = append(f.roots[:i:i], f.roots[i+1:]...)
				break
			}
		}

		return
	}

	parent := f.objects[parentDN]
	if parent == nil {
		return
	}

	// replace the parent so readers holding the old one are not affected
	pruned := *parent
	pruned.Children = nil

	for _, c := range parent.Children {
		if c.DN != dn {
			pruned.Children = append(pruned.Children, c)
		}
	}

	f.objects[parentDN] = &pruned
	f.relink(parentDN, parent, &pruned)
}

func (f *Fabric) relink(dn string, old, updated *apic.Object) {
	grand, ok := f.parents[dn]
	if !ok {
		return
	}

	gp := f.objects[grand]
	if gp == nil {
		return
	}

	copied := *gp
	copied.Children = make([]*apic.Object, len(gp.Children))

	for i, c := range gp.Children {
		if c == old {
			copied.Children[i] = updated
		} else {
			copied.Children[i] = c
		}
	}

	f.objects[grand] = &copied
	f.relink(grand, gp, &copied)
}

func (f *Fabric) forget(obj *apic.Object) {
	delete(f.objects, obj.DN)

	for _, child := range obj.Children {
		f.forget(child)
		delete(f.parents, child.DN)
	}
}
