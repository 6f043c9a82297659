package repository

import "github.com/minitask/client/internal/domain/entities"

// SeedLocations is the fixed hierarchy the reference API serves.
func SeedLocations() []*entities.Location {
	return []*entities.Location{
		{ID: "st-mh", Level: entities.LevelState, Name: "Maharashtra"},
		{ID: "st-ka", Level: entities.LevelState, Name: "Karnataka"},
		{ID: "st-gj", Level: entities.LevelState, Name: "Gujarat"},

		{ID: "ds-pune", ParentID: "st-mh", Level: entities.LevelDistrict, Name: "Pune"},
		{ID: "ds-mumbai", ParentID: "st-mh", Level: entities.LevelDistrict, Name: "Mumbai"},
		{ID: "ds-blr", ParentID: "st-ka", Level: entities.LevelDistrict, Name: "Bengaluru Urban"},
		{ID: "ds-mysuru", ParentID: "st-ka", Level: entities.LevelDistrict, Name: "Mysuru"},
		{ID: "ds-ahd", ParentID: "st-gj", Level: entities.LevelDistrict, Name: "Ahmedabad"},

		{ID: "ct-hinjewadi", ParentID: "ds-pune", Level: entities.LevelCity, Name: "Hinjewadi"},
		{ID: "ct-baner", ParentID: "ds-pune", Level: entities.LevelCity, Name: "Baner"},
		{ID: "ct-andheri", ParentID: "ds-mumbai", Level: entities.LevelCity, Name: "Andheri"},
		{ID: "ct-bandra", ParentID: "ds-mumbai", Level: entities.LevelCity, Name: "Bandra"},
		{ID: "ct-whitefield", ParentID: "ds-blr", Level: entities.LevelCity, Name: "Whitefield"},
		{ID: "ct-koramangala", ParentID: "ds-blr", Level: entities.LevelCity, Name: "Koramangala"},
		{ID: "ct-nanjangud", ParentID: "ds-mysuru", Level: entities.LevelCity, Name: "Nanjangud"},
		{ID: "ct-sanand", ParentID: "ds-ahd", Level: entities.LevelCity, Name: "Sanand"},
	}
}
