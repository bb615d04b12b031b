// Package fake provides an in-memory scene.Scene double for tests and for
// dry-run builds with no DCC host attached.
package fake

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rigforge/rigforge/internal/core/scene"
)

type node struct {
	name     string
	parent   scene.Handle
	children []scene.Handle
	tags     map[string]struct{}
	attrs    map[string]scene.AttrValue
}

// Scene is an in-memory implementation of scene.Scene. The zero value is
// ready to use.
type Scene struct {
	mu      sync.Mutex
	nodes   map[scene.Handle]*node
	counter int
	saved   []string
	imports []string
}

// New returns an empty fake scene.
func New() *Scene {
	return &Scene{nodes: make(map[scene.Handle]*node)}
}

func (s *Scene) nextHandle(name string) scene.Handle {
	s.counter++
	return scene.Handle(fmt.Sprintf("|%s#%d", name, s.counter))
}

func (s *Scene) CreateContainer(_ context.Context, name string, parent scene.Handle) (scene.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nodes == nil {
		s.nodes = make(map[scene.Handle]*node)
	}
	if !parent.Empty() {
		if _, ok := s.nodes[parent]; !ok {
			return "", fmt.Errorf("fake scene: parent %q does not exist", parent)
		}
	}

	h := s.nextHandle(name)
	s.nodes[h] = &node{
		name:   name,
		parent: parent,
		tags:   make(map[string]struct{}),
		attrs:  make(map[string]scene.AttrValue),
	}
	if !parent.Empty() {
		s.nodes[parent].children = append(s.nodes[parent].children, h)
	}
	return h, nil
}

func (s *Scene) DeleteContainer(_ context.Context, h scene.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteRecursive(h)
}

func (s *Scene) deleteRecursive(h scene.Handle) error {
	n, ok := s.nodes[h]
	if !ok {
		return fmt.Errorf("fake scene: node %q does not exist", h)
	}
	for _, c := range n.children {
		if err := s.deleteRecursive(c); err != nil {
			return err
		}
	}
	if !n.parent.Empty() {
		if p, ok := s.nodes[n.parent]; ok {
			p.children = removeHandle(p.children, h)
		}
	}
	delete(s.nodes, h)
	return nil
}

func removeHandle(list []scene.Handle, h scene.Handle) []scene.Handle {
	out := list[:0]
	for _, x := range list {
		if x != h {
			out = append(out, x)
		}
	}
	return out
}

func (s *Scene) Tag(_ context.Context, h scene.Handle, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[h]
	if !ok {
		return fmt.Errorf("fake scene: node %q does not exist", h)
	}
	n.tags[tag] = struct{}{}
	return nil
}

func (s *Scene) GetTagged(_ context.Context, tag string) ([]scene.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []scene.Handle
	for h, n := range s.nodes {
		if _, ok := n.tags[tag]; ok {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Scene) SetAttr(_ context.Context, h scene.Handle, name string, value scene.AttrValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[h]
	if !ok {
		return fmt.Errorf("fake scene: node %q does not exist", h)
	}
	n.attrs[name] = value
	return nil
}

func (s *Scene) GetAttr(_ context.Context, h scene.Handle, name string) (scene.AttrValue, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[h]
	if !ok {
		return nil, false, fmt.Errorf("fake scene: node %q does not exist", h)
	}
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (s *Scene) AddAttr(_ context.Context, h scene.Handle, name string, kind scene.AttrKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[h]
	if !ok {
		return fmt.Errorf("fake scene: node %q does not exist", h)
	}
	if _, exists := n.attrs[name]; exists {
		return nil
	}
	switch kind {
	case scene.AttrStringList:
		n.attrs[name] = []string{}
	case scene.AttrInt:
		n.attrs[name] = 0
	case scene.AttrFloat:
		n.attrs[name] = 0.0
	case scene.AttrBool:
		n.attrs[name] = false
	default:
		n.attrs[name] = ""
	}
	return nil
}

func (s *Scene) Parent(_ context.Context, child, newParent scene.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.nodes[child]
	if !ok {
		return fmt.Errorf("fake scene: node %q does not exist", child)
	}
	if !newParent.Empty() {
		if _, ok := s.nodes[newParent]; !ok {
			return fmt.Errorf("fake scene: parent %q does not exist", newParent)
		}
	}

	if !c.parent.Empty() {
		if p, ok := s.nodes[c.parent]; ok {
			p.children = removeHandle(p.children, child)
		}
	}
	c.parent = newParent
	if !newParent.Empty() {
		s.nodes[newParent].children = append(s.nodes[newParent].children, child)
	}
	return nil
}

func (s *Scene) ListRelatives(_ context.Context, h scene.Handle) ([]scene.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[h]
	if !ok {
		return nil, fmt.Errorf("fake scene: node %q does not exist", h)
	}
	out := make([]scene.Handle, len(n.children))
	copy(out, n.children)
	return out, nil
}

func (s *Scene) ImportFile(_ context.Context, path, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, namespace+":"+path)
	return nil
}

func (s *Scene) SaveScene(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, path)
	return nil
}

func (s *Scene) Exists(_ context.Context, h scene.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[h]
	return ok
}

func (s *Scene) Dirname(p string) string { return path.Dir(filepathToSlash(p)) }

func (s *Scene) Join(parts ...string) string { return path.Join(parts...) }

func (s *Scene) Relativize(base, target string) string {
	baseParts := strings.Split(strings.Trim(filepathToSlash(base), "/"), "/")
	targetParts := strings.Split(strings.Trim(filepathToSlash(target), "/"), "/")

	i := 0
	for i < len(baseParts) && i < len(targetParts) && baseParts[i] == targetParts[i] {
		i++
	}

	up := strings.Repeat("../", len(baseParts)-i)
	rest := strings.Join(targetParts[i:], "/")
	return up + rest
}

func filepathToSlash(p string) string { return strings.ReplaceAll(p, "\\", "/") }

// Imports returns the (namespace, path) pairs recorded by ImportFile calls,
// newest last. Used by tests asserting model/skeleton import order.
func (s *Scene) Imports() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.imports))
	copy(out, s.imports)
	return out
}

// SavedScenes returns the paths recorded by SaveScene calls, newest last.
func (s *Scene) SavedScenes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.saved))
	copy(out, s.saved)
	return out
}

// NodeCount reports how many live nodes the fake scene holds. Handy for
// asserting DeleteContainer actually pruned a subtree.
func (s *Scene) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// DebugTree renders the scene as an indented name tree, for failure output.
func (s *Scene) DebugTree() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roots []scene.Handle
	for h, n := range s.nodes {
		if n.parent.Empty() {
			roots = append(roots, h)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	var b strings.Builder
	for _, r := range roots {
		s.writeTree(&b, r, 0)
	}
	return b.String()
}

func (s *Scene) writeTree(b *strings.Builder, h scene.Handle, depth int) {
	n := s.nodes[h]
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.name)
	b.WriteString(" (")
	b.WriteString(strconv.Itoa(len(n.children)))
	b.WriteString(" children)\n")
	for _, c := range n.children {
		s.writeTree(b, c, depth+1)
	}
}
