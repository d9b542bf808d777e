package sema

import "github.com/portugol-lang/portugol/internal/types"

// Category distinguishes what a Symbol was declared as.
type Category int

const (
	CategoryVariable Category = iota
	CategoryConstant
	CategoryParameter
	CategoryFunction
)

// Symbol is an entry in the symbol table: a declared name together with
// everything the analyzer needs to check later uses of it.
type Symbol struct {
	Name        string
	Type        types.Type
	Category    Category
	ScopeDepth  int
	Line        int
	Column      int
	Initialized bool
	IsConst     bool
	Signature   *types.FunctionSignature // non-nil iff Category == CategoryFunction
}

// frame is one level of the name-resolution stack.
type frame struct {
	symbols map[string]*Symbol
}

func newFrame() *frame { return &frame{symbols: make(map[string]*Symbol)} }

// SymbolTable is a stack of scope frames. The bottom frame is global and is
// pre-populated by NewSymbolTable with the built-in functions. Lookup
// searches inner to outer; names within a single frame must be unique.
type SymbolTable struct {
	frames []*frame
}

// NewSymbolTable returns a table with a single global frame pre-populated
// with the built-in conversion, math, and string functions from the
// reference's standard library.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{}
	t.Push()
	for name, sig := range builtins() {
		t.Declare(&Symbol{
			Name:      name,
			Type:      types.Function,
			Category:  CategoryFunction,
			Signature: sig,
		})
	}
	return t
}

// Push enters a new scope (a block, a function body, or a for header).
func (t *SymbolTable) Push() { t.frames = append(t.frames, newFrame()) }

// Pop exits the current scope, discarding every symbol declared within it.
func (t *SymbolTable) Pop() { t.frames = t.frames[:len(t.frames)-1] }

// Depth returns the current scope nesting depth (the global frame is
// depth 0).
func (t *SymbolTable) Depth() int { return len(t.frames) - 1 }

// DeclaredInCurrent reports whether name already exists in the innermost
// frame only (shadowing an outer frame is legal; redeclaring within the
// same frame is not).
func (t *SymbolTable) DeclaredInCurrent(name string) (*Symbol, bool) {
	cur := t.frames[len(t.frames)-1]
	s, ok := cur.symbols[name]
	return s, ok
}

// Declare adds sym to the innermost frame, stamping its ScopeDepth.
func (t *SymbolTable) Declare(sym *Symbol) {
	sym.ScopeDepth = t.Depth()
	t.frames[len(t.frames)-1].symbols[sym.Name] = sym
}

// Lookup searches from the innermost frame outward.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if s, ok := t.frames[i].symbols[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// Names returns every name visible from the current scope, innermost
// first, for use in "did you mean" suggestion scoring.
func (t *SymbolTable) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for i := len(t.frames) - 1; i >= 0; i-- {
		for name := range t.frames[i].symbols {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

func builtins() map[string]*types.FunctionSignature {
	return map[string]*types.FunctionSignature{
		"paraInteiro": {Params: []types.Type{types.Unknown}, ParamNames: []string{"v"}, Return: types.Int},
		"paraReal":    {Params: []types.Type{types.Unknown}, ParamNames: []string{"v"}, Return: types.Real},
		"paraTexto":   {Params: []types.Type{types.Unknown}, ParamNames: []string{"v"}, Return: types.Text},
		"raiz":        {Params: []types.Type{types.Real}, ParamNames: []string{"v"}, Return: types.Real},
		"absoluto":    {Params: []types.Type{types.Real}, ParamNames: []string{"v"}, Return: types.Real},
		"arredonda":   {Params: []types.Type{types.Real}, ParamNames: []string{"v"}, Return: types.Real},
		"tamanho":     {Params: []types.Type{types.Text}, ParamNames: []string{"v"}, Return: types.Int},
	}
}

// BuiltinNames lists every pre-declared built-in name.
func BuiltinNames() []string {
	b := builtins()
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	return names
}
