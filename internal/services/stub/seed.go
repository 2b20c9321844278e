package stub

import "github.com/lfx-eng/onboard/internal/types"

// Set bundles one instance of every fake collaborator.
type Set struct {
	Members   *Directory
	Projects  *Projects
	Slack     *Slack
	Email     *Email
	Landscape *Landscape
}

// NewSet creates empty fakes for every collaborator.
func NewSet() *Set {
	return &Set{
		Members:   NewDirectory(),
		Projects:  NewProjects(),
		Slack:     NewSlack(),
		Email:     NewEmail(),
		Landscape: NewLandscape(),
	}
}

// NewSeededSet creates fakes pre-loaded with sample organizations and
// projects, enough for an end-to-end local run:
//
//	onboard run --stub --org "Acme Corp" --project cncf
func NewSeededSet() *Set {
	s := NewSet()

	s.Members.AddMember(
		&types.MemberInfo{ID: "org-001", Name: "Acme Corp", Tier: "Gold"},
		&types.Contact{ContactID: "cnt-001", Email: "john.doe@acmecorp.com", FirstName: "John", LastName: "Doe", Title: "CEO", ContactType: types.ContactPrimary, Organization: "Acme Corp"},
		&types.Contact{ContactID: "cnt-002", Email: "jane.smith@acmecorp.com", FirstName: "Jane", LastName: "Smith", Title: "VP Marketing", ContactType: types.ContactMarketing, Organization: "Acme Corp"},
		&types.Contact{ContactID: "cnt-003", Email: "bob.johnson@acmecorp.com", FirstName: "Bob", LastName: "Johnson", Title: "CTO", ContactType: types.ContactTechnical, Organization: "Acme Corp"},
	)
	s.Members.AddMember(
		&types.MemberInfo{ID: "org-002", Name: "Tech Innovations Inc", Tier: "Silver"},
		&types.Contact{ContactID: "cnt-004", Email: "alice.williams@techinnovations.com", FirstName: "Alice", LastName: "Williams", Title: "President", ContactType: types.ContactPrimary, Organization: "Tech Innovations Inc"},
		&types.Contact{ContactID: "cnt-005", Email: "charlie.brown@techinnovations.com", FirstName: "Charlie", LastName: "Brown", Title: "Marketing Director", ContactType: types.ContactMarketing, Organization: "Tech Innovations Inc"},
		&types.Contact{ContactID: "cnt-006", Email: "david.lee@techinnovations.com", FirstName: "David", LastName: "Lee", Title: "Engineering Lead", ContactType: types.ContactTechnical, Organization: "Tech Innovations Inc"},
	)

	s.Projects.AddProject(
		&types.ProjectInfo{ID: "proj-001", Slug: "cncf", Name: "CNCF", Description: "Cloud Native Computing Foundation"},
		&types.Committee{ID: "comm-001", Name: "Governing Board", Type: "governance"},
		&types.Committee{ID: "comm-002", Name: "Marketing Committee", Type: "marketing"},
		&types.Committee{ID: "comm-003", Name: "Technical Steering Committee", Type: "technical"},
	)
	s.Projects.AddProject(
		&types.ProjectInfo{ID: "proj-002", Slug: "prometheus", Name: "Prometheus", Description: "Monitoring and alerting toolkit"},
		&types.Committee{ID: "comm-004", Name: "Governing Board", Type: "governance"},
		&types.Committee{ID: "comm-005", Name: "Marketing Committee", Type: "marketing"},
		&types.Committee{ID: "comm-006", Name: "Technical Committee", Type: "technical"},
	)

	return s
}
