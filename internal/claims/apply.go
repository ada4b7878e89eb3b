package claims

// Apply merges a delta into a document and returns the result without
// modifying the input. The role field is never touched.
//
// Before any merge, every module named in the delta is backfilled so all four
// action keys exist (empty lists when absent). Additive mode appends the
// company id for true values and ignores false ones, so it can only grow the
// grant set. Replace mode inserts for true and removes for false. Both modes
// are idempotent per (module, action, company), which keeps at-least-once
// task retries safe.
func Apply(doc Document, delta Delta, companyID int64, mode Mode) Document {
	out := doc.Clone()
	if out.Modules == nil {
		out.Modules = make(map[string]Grants, len(delta))
	}
	for module := range delta {
		grants := out.Modules[module]
		if grants == nil {
			grants = make(Grants, len(AllActions))
			out.Modules[module] = grants
		}
		for _, action := range AllActions {
			if grants[action] == nil {
				grants[action] = []int64{}
			}
		}
	}
	for module, set := range delta {
		grants := out.Modules[module]
		for _, action := range AllActions {
			switch {
			case set.value(action):
				grants[action] = insertCompany(grants[action], companyID)
			case mode == ModeReplace:
				grants[action] = removeCompany(grants[action], companyID)
			}
		}
	}
	return out
}

func insertCompany(ids []int64, companyID int64) []int64 {
	for _, id := range ids {
		if id == companyID {
			return ids
		}
	}
	return append(ids, companyID)
}

func removeCompany(ids []int64, companyID int64) []int64 {
	out := ids[:0]
	for _, id := range ids {
		if id != companyID {
			out = append(out, id)
		}
	}
	return out
}
