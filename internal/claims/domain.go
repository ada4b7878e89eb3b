// Package claims implements the per-identity permission model: the claims
// document persisted per user, the pure evaluator that decides access, and
// the mutation logic that merges permission deltas into a document.
package claims

import (
	"encoding/json"
	"sort"
	"strings"
)

// Action is one of the four operations a module grant can authorize.
type Action string

// Actions recognised in claims documents and requirements.
const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AllActions lists every action in a stable order.
var AllActions = []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete}

// WildcardTenant in a grant list authorizes every company.
const WildcardTenant int64 = 0

// Grants maps an action to the company ids it is granted for.
type Grants map[Action][]int64

// Document is one identity's full permission state. Modules maps a module
// name (e.g. "sales") to its grants. A module that is absent means no access;
// a module that is present carries all four action keys once a mutation has
// touched it.
type Document struct {
	Role    string
	Modules map[string]Grants
}

// Allows reports whether the document grants action on module for companyID.
// A grant list containing WildcardTenant matches any company. Missing module
// or action keys deny.
func (d Document) Allows(module string, action Action, companyID int64) bool {
	grants, ok := d.Modules[module]
	if !ok {
		return false
	}
	ids, ok := grants[action]
	if !ok {
		return false
	}
	for _, id := range ids {
		if id == WildcardTenant || id == companyID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so mutations never alias the source document.
func (d Document) Clone() Document {
	out := Document{Role: d.Role}
	if d.Modules == nil {
		return out
	}
	out.Modules = make(map[string]Grants, len(d.Modules))
	for module, grants := range d.Modules {
		copied := make(Grants, len(grants))
		for action, ids := range grants {
			copied[action] = append([]int64(nil), ids...)
		}
		out.Modules[module] = copied
	}
	return out
}

// MarshalJSON writes the legacy flat wire form: a "role" key plus one
// "<module>_<action>" key per grant list. This is the format stored in
// postgres and redis, so it must stay stable.
func (d Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]json.RawMessage, len(d.Modules)*len(AllActions)+1)
	if d.Role != "" {
		role, err := json.Marshal(d.Role)
		if err != nil {
			return nil, err
		}
		flat["role"] = role
	}
	keys := make([]string, 0, len(d.Modules))
	for module := range d.Modules {
		keys = append(keys, module)
	}
	sort.Strings(keys)
	for _, module := range keys {
		for _, action := range AllActions {
			ids, ok := d.Modules[module][action]
			if !ok {
				continue
			}
			if ids == nil {
				ids = []int64{}
			}
			raw, err := json.Marshal(ids)
			if err != nil {
				return nil, err
			}
			flat[module+"_"+string(action)] = raw
		}
	}
	return json.Marshal(flat)
}

// UnmarshalJSON parses the flat wire form back into the two-level mapping.
// Keys that are neither "role" nor a recognised "<module>_<action>" pair are
// ignored, and malformed grant lists read as empty, so a damaged document
// degrades toward deny rather than failing the read.
func (d *Document) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*d = Document{}
	for key, raw := range flat {
		if key == "role" {
			var role string
			if err := json.Unmarshal(raw, &role); err == nil {
				d.Role = role
			}
			continue
		}
		module, action, ok := splitGrantKey(key)
		if !ok {
			continue
		}
		var ids []int64
		if err := json.Unmarshal(raw, &ids); err != nil {
			ids = []int64{}
		}
		if ids == nil {
			ids = []int64{}
		}
		if d.Modules == nil {
			d.Modules = make(map[string]Grants)
		}
		if d.Modules[module] == nil {
			d.Modules[module] = make(Grants, len(AllActions))
		}
		d.Modules[module][action] = ids
	}
	return nil
}

func splitGrantKey(key string) (string, Action, bool) {
	for _, action := range AllActions {
		module, found := strings.CutSuffix(key, "_"+string(action))
		if found && module != "" {
			return module, action, true
		}
	}
	return "", "", false
}

// Requirement is the access demand a protected operation declares. Each
// action field lists the modules that must all be granted for that action
// (AND semantics). Role, when set, must equal the document's role. Bypass
// skips claim checks entirely; the caller still needs a valid session.
type Requirement struct {
	View   []string
	Create []string
	Update []string
	Delete []string
	Role   string
	Bypass bool
}

// IsEmpty reports whether the requirement demands nothing beyond a session.
func (r Requirement) IsEmpty() bool {
	return len(r.View) == 0 && len(r.Create) == 0 && len(r.Update) == 0 &&
		len(r.Delete) == 0 && r.Role == "" && !r.Bypass
}

// byAction pairs each action with its required modules for iteration.
func (r Requirement) byAction() map[Action][]string {
	return map[Action][]string{
		ActionView:   r.View,
		ActionCreate: r.Create,
		ActionUpdate: r.Update,
		ActionDelete: r.Delete,
	}
}

// ActionSet selects which actions a delta touches for one module.
type ActionSet struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

func (s ActionSet) value(action Action) bool {
	switch action {
	case ActionView:
		return s.View
	case ActionCreate:
		return s.Create
	case ActionUpdate:
		return s.Update
	case ActionDelete:
		return s.Delete
	}
	return false
}

// Delta is a requested permission change: module name to action booleans.
type Delta map[string]ActionSet

// Mode selects how a delta merges into the current document.
type Mode string

const (
	// ModeAdditive only ever grants; false values are ignored.
	ModeAdditive Mode = "additive"
	// ModeReplace sets the grant state exactly: true grants, false revokes.
	ModeReplace Mode = "replace"
)

// Valid reports whether the mode is one of the two supported values.
func (m Mode) Valid() bool {
	return m == ModeAdditive || m == ModeReplace
}
