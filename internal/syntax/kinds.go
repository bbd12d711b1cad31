package syntax

import (
	"fmt"
	"sort"
)

// Role is a logical role the declaration loader expects to find in a tree.
type Role int

const (
	RoleClass         Role = iota // class-like container
	RoleMemberList                // the container's member list
	RoleNamespace                 // namespace wrapping classes
	RoleField                     // field-like member
	RoleProperty                  // property-like member
	RoleMethod                    // method-like member
	RoleParamList                 // parameter list
	RoleParam                     // parameter
	RoleBlock                     // statement block
	RoleLocalDecl                 // local declaration statement
	RoleLocalFunc                 // local function
	RoleSuperList                 // supertype list
	RoleArgList                   // call-argument list
	RoleAttributeList             // attribute list
	RoleVarDecl                   // typed variable declaration (type + declarators)
	RoleDeclarator                // one declared name, with optional initializer
	RoleInitializer               // "= expr" clause
	RoleIdentifier                // a name
	RoleExprBody                  // "=> expr" clause
	RoleAccessorList              // property accessor list
	RoleAccessor                  // get/set/init accessor
	RoleExprStmt                  // expression statement
	RoleAssignment                // simple assignment expression
	RoleGlobalStmt                // statement at file level
	RoleModifier                  // declaration modifier
	numRoles
)

var roleNames = [numRoles]string{
	RoleClass:         "class",
	RoleMemberList:    "member_list",
	RoleNamespace:     "namespace",
	RoleField:         "field",
	RoleProperty:      "property",
	RoleMethod:        "method",
	RoleParamList:     "parameter_list",
	RoleParam:         "parameter",
	RoleBlock:         "block",
	RoleLocalDecl:     "local_declaration",
	RoleLocalFunc:     "local_function",
	RoleSuperList:     "supertype_list",
	RoleArgList:       "argument_list",
	RoleAttributeList: "attribute_list",
	RoleVarDecl:       "variable_declaration",
	RoleDeclarator:    "declarator",
	RoleInitializer:   "initializer",
	RoleIdentifier:    "identifier",
	RoleExprBody:      "expression_body",
	RoleAccessorList:  "accessor_list",
	RoleAccessor:      "accessor",
	RoleExprStmt:      "expression_statement",
	RoleAssignment:    "assignment",
	RoleGlobalStmt:    "global_statement",
	RoleModifier:      "modifier",
}

func (r Role) String() string {
	if r >= 0 && r < numRoles {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole returns the role with the given configuration name.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown syntax role %q", name)
}

// KindMap maps each role to the provider kind tags playing it.
type KindMap map[Role][]string

// DefaultKindMap follows the node names of tree-sitter-c-sharp, which the
// bundled C# provider also emits.
func DefaultKindMap() KindMap {
	return KindMap{
		RoleClass:         {"class_declaration", "struct_declaration", "record_declaration", "interface_declaration"},
		RoleMemberList:    {"declaration_list"},
		RoleNamespace:     {"namespace_declaration", "file_scoped_namespace_declaration"},
		RoleField:         {"field_declaration"},
		RoleProperty:      {"property_declaration"},
		RoleMethod:        {"method_declaration"},
		RoleParamList:     {"parameter_list"},
		RoleParam:         {"parameter"},
		RoleBlock:         {"block", "switch_body"},
		RoleLocalDecl:     {"local_declaration_statement"},
		RoleLocalFunc:     {"local_function_statement"},
		RoleSuperList:     {"base_list"},
		RoleArgList:       {"argument_list"},
		RoleAttributeList: {"attribute_list"},
		RoleVarDecl:       {"variable_declaration"},
		RoleDeclarator:    {"variable_declarator"},
		RoleInitializer:   {"equals_value_clause"},
		RoleIdentifier:    {"identifier"},
		RoleExprBody:      {"arrow_expression_clause"},
		RoleAccessorList:  {"accessor_list"},
		RoleAccessor:      {"accessor_declaration"},
		RoleExprStmt:      {"expression_statement"},
		RoleAssignment:    {"assignment_expression"},
		RoleGlobalStmt:    {"global_statement"},
		RoleModifier:      {"modifier"},
	}
}

// WithOverrides returns a copy of m where each role named in overrides is
// replaced by the given kind tags.
func (m KindMap) WithOverrides(overrides map[string][]string) (KindMap, error) {
	r := make(KindMap, len(m))
	for role, kinds := range m {
		r[role] = append([]string(nil), kinds...)
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		role, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		r[role] = append([]string(nil), overrides[name]...)
	}
	return r, nil
}

// Is reports whether n plays role r.
func (m KindMap) Is(n Node, r Role) bool {
	if n == nil {
		return false
	}
	kind := n.Kind()
	for _, k := range m[r] {
		if k == kind {
			return true
		}
	}
	return false
}

// Children returns the direct children of n playing role r.
func (m KindMap) Children(n Node, r Role) []Node {
	var found []Node
	for _, c := range n.Children() {
		if m.Is(c, r) {
			found = append(found, c)
		}
	}
	return found
}

// First returns the first direct child of n playing role r, or nil.
func (m KindMap) First(n Node, r Role) Node {
	for _, c := range n.Children() {
		if m.Is(c, r) {
			return c
		}
	}
	return nil
}

// Last returns the last direct child of n playing role r, or nil.
func (m KindMap) Last(n Node, r Role) Node {
	children := n.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if m.Is(children[i], r) {
			return children[i]
		}
	}
	return nil
}
