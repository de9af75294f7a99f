package handlers

import (
	"fmt"

	"github.com/rohanthewiz/element"
	"github.com/rohanthewiz/rweb"

	"ecofood/db"
)

// UIHandler serves a minimal status page listing households and their
// saved plans using the element package
func UIHandler(c rweb.Context) error {
	var households []db.Household
	if database, err := db.GetDB(); err == nil {
		households, _ = database.ListHouseholds()
	}
	return c.WriteHTML(generateStatusPage(households))
}

func generateStatusPage(households []db.Household) string {
	b := element.NewBuilder()

	b.Html().R(
		b.Head().R(
			b.Title().T("EcoFood - Household Meal Planner"),
			b.Meta("charset", "UTF-8"),
			b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
			b.Style().T(statusCSS),
		),
		b.Body().R(
			b.Div("id", "app").R(
				b.Header().R(
					b.H1().T("EcoFood"),
					b.P("class", "tagline").T("Weekly meal plans for the whole household"),
				),
				b.Section("class", "households").R(
					b.H2().T("Households"),
					func() any {
						if len(households) == 0 {
							b.P("class", "empty").T("No households yet. POST /api/households to create one.")
							return nil
						}
						for _, h := range households {
							flags := ""
							if h.EcoFriendly {
								flags += " eco"
							}
							if h.UseLeftovers {
								flags += " leftovers"
							}
							b.Div("class", "household-row").R(
								b.A("href", fmt.Sprintf("/api/households/%d", h.ID)).T(h.Name),
								b.Span("class", "flags").T(flags),
							)
						}
						return nil
					}(),
				),
				b.Section("class", "usage").R(
					b.H2().T("Planning Jobs"),
					b.P().T("POST /api/plan-jobs with household_id and week_start to start a job,"+
						" then follow /api/plan-jobs/{id}/events/stream for progress."),
				),
			),
		),
	)

	return b.String()
}

const statusCSS = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f7f4; color: #233; }
#app { max-width: 720px; margin: 0 auto; padding: 2rem 1rem; }
header h1 { margin-bottom: 0; color: #2c6e49; }
.tagline { margin-top: 0.25rem; color: #557; }
section { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; margin-top: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.flags { margin-left: 0.5rem; font-size: 0.85em; color: #2c6e49; }
.empty { color: #779; }
a { color: #2c6e49; }
`
