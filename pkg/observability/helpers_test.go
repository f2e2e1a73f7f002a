package observability_test

import "github.com/aretw0/nest/pkg/domain"

var T = domain.T

// formConfig is a small tree: ROOT enters FORM, which walks SHOW -> CHECK and
// leaves on "ok".
func formConfig() domain.StateConfig {
	return domain.StateConfig{
		Key: "ROOT",
		Transitions: []domain.Transition{
			T("", "*", "FORM"),
			T("FORM", "*", "DONE"),
		},
		States: []domain.StateConfig{{
			Key: "FORM",
			Transitions: []domain.Transition{
				T("", "*", "SHOW"),
				T("SHOW", "*", "CHECK"),
				T("CHECK", "ok", ""),
			},
		}},
	}
}
