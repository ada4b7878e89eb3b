package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func docWith(role string, modules map[string]Grants) Document {
	return Document{Role: role, Modules: modules}
}

func TestEvaluateEmptyRequirementAllows(t *testing.T) {
	assert.True(t, Evaluate(Requirement{}, Document{}, 7))
	assert.True(t, Evaluate(Requirement{}, docWith("manager", nil), 7))
}

func TestEvaluateBypassAllowsRegardlessOfClaims(t *testing.T) {
	req := Requirement{Bypass: true, View: []string{"sales"}, Role: "super"}
	assert.True(t, Evaluate(req, Document{}, 3))
}

func TestEvaluateRoleMatch(t *testing.T) {
	doc := docWith("manager", nil)

	assert.True(t, Evaluate(Requirement{Role: "manager"}, doc, 1))
	assert.False(t, Evaluate(Requirement{Role: "super"}, doc, 1))
	assert.False(t, Evaluate(Requirement{Role: "super"}, Document{}, 1))
}

func TestEvaluateRoleIndependentOfGrants(t *testing.T) {
	// Holding every module grant does not substitute for the role.
	doc := docWith("", map[string]Grants{
		"sales": {ActionView: {WildcardTenant}},
	})
	assert.False(t, Evaluate(Requirement{Role: "super", View: []string{"sales"}}, doc, 1))
}

func TestEvaluateSingleModuleGrant(t *testing.T) {
	doc := docWith("", map[string]Grants{
		"sales": {
			ActionView:   {4},
			ActionCreate: {},
		},
	})

	assert.True(t, Evaluate(Requirement{View: []string{"sales"}}, doc, 4))
	assert.False(t, Evaluate(Requirement{View: []string{"sales"}}, doc, 5), "wrong company")
	assert.False(t, Evaluate(Requirement{Create: []string{"sales"}}, doc, 4), "empty grant list")
	assert.False(t, Evaluate(Requirement{Update: []string{"sales"}}, doc, 4), "missing action key")
	assert.False(t, Evaluate(Requirement{View: []string{"purchasing"}}, doc, 4), "missing module")
}

func TestEvaluateWildcardGrantMatchesAnyCompany(t *testing.T) {
	doc := docWith("", map[string]Grants{
		"parts": {ActionUpdate: {WildcardTenant}},
	})

	assert.True(t, Evaluate(Requirement{Update: []string{"parts"}}, doc, 1))
	assert.True(t, Evaluate(Requirement{Update: []string{"parts"}}, doc, 999))
}

func TestEvaluateRequestedWildcardCompanyNotSpecial(t *testing.T) {
	// Only grant-side wildcards short-circuit. Asking for company zero must
	// still match literally against the grant list.
	doc := docWith("", map[string]Grants{
		"sales": {ActionView: {7}},
	})
	assert.False(t, Evaluate(Requirement{View: []string{"sales"}}, doc, WildcardTenant))

	wild := docWith("", map[string]Grants{
		"sales": {ActionView: {WildcardTenant}},
	})
	assert.True(t, Evaluate(Requirement{View: []string{"sales"}}, wild, WildcardTenant))
	assert.True(t, Evaluate(Requirement{View: []string{"sales"}}, wild, 9999))
}

func TestEvaluateMultiModuleAnd(t *testing.T) {
	doc := docWith("", map[string]Grants{
		"purchasing": {ActionUpdate: {2}},
		"parts":      {ActionUpdate: {2}},
	})
	req := Requirement{Update: []string{"purchasing", "parts"}}

	assert.True(t, Evaluate(req, doc, 2))

	// Dropping either module denies the whole requirement.
	partial := docWith("", map[string]Grants{
		"purchasing": {ActionUpdate: {2}},
	})
	assert.False(t, Evaluate(req, partial, 2))
}

func TestEvaluateMixedActionsAllMustHold(t *testing.T) {
	doc := docWith("", map[string]Grants{
		"sales":   {ActionView: {1}, ActionUpdate: {1}},
		"reports": {ActionView: {1}},
	})

	req := Requirement{
		View:   []string{"sales", "reports"},
		Update: []string{"sales"},
	}
	assert.True(t, Evaluate(req, doc, 1))

	req.Update = append(req.Update, "reports")
	assert.False(t, Evaluate(req, doc, 1))
}

func TestEvaluateNilDocumentDenies(t *testing.T) {
	assert.False(t, Evaluate(Requirement{View: []string{"sales"}}, Document{}, 1))
}
