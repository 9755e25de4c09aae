package crudtests

// Fixture is a destination the service is expected to already have, and the values it should
// have. Empty values are not checked.
type Fixture struct {
	Name            string
	Location        string
	Description     string
	BestTimeToVisit string
	Attractions     []string
	CategoryName    string
}

func (f Fixture) expectedFields() [][2]string {
	var ret [][2]string
	for _, kv := range [][2]string{
		{"location", f.Location},
		{"description", f.Description},
		{"bestTimeToVisit", f.BestTimeToVisit},
		{"category.name", f.CategoryName},
	} {
		if kv[1] != "" {
			ret = append(ret, kv)
		}
	}
	return ret
}
