package catalog

// --------------------------------------------------------------------------
// Field helpers
// --------------------------------------------------------------------------

func str(name, label string) Field     { return Field{Name: name, Label: label, Kind: KindString} }
func text(name, label string) Field    { return Field{Name: name, Label: label, Kind: KindText} }
func integer(name, label string) Field { return Field{Name: name, Label: label, Kind: KindInt} }
func boolean(name, label string) Field { return Field{Name: name, Label: label, Kind: KindBool} }
func date(name, label string) Field    { return Field{Name: name, Label: label, Kind: KindDate} }
func clock(name, label string) Field   { return Field{Name: name, Label: label, Kind: KindTime} }

func required(f Field) Field {
	f.Required = true
	return f
}

func choice(name, label string, options ...string) Field {
	return Field{Name: name, Label: label, Kind: KindSelect, Options: options}
}

func many(name, label, relType string, dir Direction, target string, attrs ...Field) Relation {
	return Relation{Name: name, Label: label, Type: relType, Direction: dir, Target: target, Cardinality: Many, Attributes: attrs}
}

func one(name, label, relType string, dir Direction, target string, attrs ...Field) Relation {
	return Relation{Name: name, Label: label, Type: relType, Direction: dir, Target: target, Cardinality: One, Attributes: attrs}
}

var statuses = []string{"ACTIVE", "INACTIVE", "RETIRED", "UNKNOWN"}

// Edge attribute sets shared by both sides of a relation.
var (
	playerTeamAttrs = []Field{str("position", "Position"), integer("jersey", "Jersey")}
	gameTeamAttrs   = []Field{boolean("host", "Host")}
	lineupAttrs     = []Field{integer("jersey", "Jersey"), boolean("captain", "Captain"), boolean("goalkeeper", "Goalkeeper")}
)

// --------------------------------------------------------------------------
// League catalogue
// --------------------------------------------------------------------------

// Hockey returns the catalogue of the hockey league graph.
func Hockey() *Catalog {
	return MustNew(
		&Entity{
			Name: "Association", Plural: "associations", Path: "associations",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("nick", "Nick"), str("short", "Short"),
				str("legalName", "Legal name"), date("foundDate", "Found date"),
				choice("status", "Status", statuses...), text("description", "Description"),
			},
			Relations: []Relation{
				many("organizations", "Organizations", "MEMBER_OF", In, "Organization"),
				many("awards", "Awards", "AWARDS", Out, "Award"),
				many("sponsors", "Sponsors", "SPONSORS", In, "Sponsor"),
			},
		},
		&Entity{
			Name: "Organization", Plural: "organizations", Path: "organizations",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("nick", "Nick"), str("short", "Short"),
				str("legalName", "Legal name"), str("urlSlug", "URL slug"),
				date("foundDate", "Found date"), choice("status", "Status", statuses...),
				text("description", "Description"),
			},
			Relations: []Relation{
				one("association", "Association", "MEMBER_OF", Out, "Association"),
				many("teams", "Teams", "OWNS", Out, "Team"),
				many("sponsors", "Sponsors", "SPONSORS", In, "Sponsor"),
				many("users", "Users", "ADMIN_OF", In, "User"),
			},
		},
		&Entity{
			Name: "Team", Plural: "teams", Path: "teams",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("nick", "Nick"), str("short", "Short"),
				str("fullName", "Full name"), str("logo", "Logo URL"),
				str("primaryColor", "Primary color"), str("secondaryColor", "Secondary color"),
				date("foundDate", "Found date"), choice("status", "Status", statuses...),
				str("externalId", "External id"),
			},
			Relations: []Relation{
				one("organization", "Organization", "OWNS", In, "Organization"),
				many("players", "Players", "PLAYS_FOR", In, "Player", playerTeamAttrs...),
				many("positions", "Positions", "HAS_POSITION", Out, "Position"),
				many("games", "Games", "PLAYS_IN", Out, "Game", gameTeamAttrs...),
				many("venues", "Venues", "HOME_AT", Out, "Venue"),
				many("awards", "Awards", "RECEIVED", Out, "Award"),
				many("sponsors", "Sponsors", "SPONSORS", In, "Sponsor"),
			},
		},
		&Entity{
			Name: "Player", Plural: "players", Path: "players",
			TitleFields: []string{"firstName", "lastName"},
			Fields: []Field{
				required(str("firstName", "First name")), required(str("lastName", "Last name")),
				str("name", "Display name"), date("birthday", "Birthday"),
				str("country", "Country"), str("city", "City"),
				choice("stick", "Stick", "LEFT", "RIGHT"), choice("gender", "Gender", "MALE", "FEMALE"),
				integer("height", "Height (cm)"), integer("weight", "Weight (kg)"),
				str("avatar", "Avatar URL"), choice("activityStatus", "Activity", statuses...),
				str("levelCode", "Level code"), str("externalId", "External id"),
			},
			Relations: []Relation{
				many("teams", "Teams", "PLAYS_FOR", Out, "Team", playerTeamAttrs...),
				many("positions", "Positions", "PLAYS_AS", Out, "Position"),
				many("games", "Games", "IN_LINEUP", Out, "Game", lineupAttrs...),
				many("awards", "Awards", "RECEIVED", Out, "Award"),
				many("sponsors", "Sponsors", "SPONSORS", In, "Sponsor"),
				one("user", "User", "IS", In, "User"),
			},
		},
		&Entity{
			Name: "Position", Plural: "positions", Path: "positions",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("short", "Short"), text("description", "Description"),
			},
			Relations: []Relation{
				one("team", "Team", "HAS_POSITION", In, "Team"),
				many("players", "Players", "PLAYS_AS", In, "Player"),
			},
		},
		&Entity{
			Name: "Game", Plural: "games", Path: "games",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), choice("type", "Type", "FRIENDLY", "LEAGUE", "PLAYOFF", "TOURNAMENT"),
				date("startDate", "Start date"), clock("startTime", "Start time"),
				date("endDate", "End date"), clock("endTime", "End time"),
				str("timekeeper", "Timekeeper"), str("referee", "Referee"),
				str("info", "Info"), text("description", "Description"),
			},
			Relations: []Relation{
				many("teams", "Teams", "PLAYS_IN", In, "Team", gameTeamAttrs...),
				many("players", "Lineup", "IN_LINEUP", In, "Player", lineupAttrs...),
				one("venue", "Venue", "AT", Out, "Venue"),
			},
		},
		&Entity{
			Name: "Sponsor", Plural: "sponsors", Path: "sponsors",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("legalName", "Legal name"), str("nick", "Nick"),
				str("short", "Short"), str("web", "Web"), text("description", "Description"),
			},
			Relations: []Relation{
				many("associations", "Associations", "SPONSORS", Out, "Association"),
				many("organizations", "Organizations", "SPONSORS", Out, "Organization"),
				many("teams", "Teams", "SPONSORS", Out, "Team"),
				many("players", "Players", "SPONSORS", Out, "Player"),
				many("awards", "Awards", "PROVIDES", Out, "Award"),
			},
		},
		&Entity{
			Name: "Venue", Plural: "venues", Path: "venues",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("nick", "Nick"), str("short", "Short"),
				str("web", "Web"), str("location", "Location"), integer("capacity", "Capacity"),
				date("foundDate", "Found date"), text("description", "Description"),
			},
			Relations: []Relation{
				many("teams", "Teams", "HOME_AT", In, "Team"),
				many("games", "Games", "AT", In, "Game"),
			},
		},
		&Entity{
			Name: "Award", Plural: "awards", Path: "awards",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), str("nick", "Nick"), str("short", "Short"),
				choice("type", "Type", "INDIVIDUAL", "TEAM", "SEASON"),
				date("foundDate", "Found date"), text("description", "Description"),
			},
			Relations: []Relation{
				many("associations", "Associations", "AWARDS", In, "Association"),
				many("teams", "Teams", "RECEIVED", In, "Team"),
				many("players", "Players", "RECEIVED", In, "Player"),
				many("sponsors", "Sponsors", "PROVIDES", In, "Sponsor"),
			},
		},
		&Entity{
			Name: "RulePack", Plural: "rulePacks", Path: "rule-packs",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), integer("periods", "Periods"),
				integer("periodLength", "Period length (min)"), text("description", "Description"),
			},
		},
		&Entity{
			Name: "SystemSettings", Plural: "systemSettings", Path: "system-settings",
			TitleFields: []string{"name"},
			Fields: []Field{
				required(str("name", "Name")), choice("language", "Language", "en", "cs", "sk"),
				boolean("maintenance", "Maintenance mode"),
			},
			Relations: []Relation{
				one("rulePack", "Rule pack", "USES", Out, "RulePack"),
			},
		},
		&Entity{
			Name: "User", Plural: "users", Path: "users",
			TitleFields: []string{"firstName", "lastName"},
			Fields: []Field{
				required(str("firstName", "First name")), required(str("lastName", "Last name")),
				required(str("email", "Email")), str("phone", "Phone"),
			},
			Relations: []Relation{
				many("organizations", "Organizations", "ADMIN_OF", Out, "Organization"),
				one("player", "Player", "IS", Out, "Player"),
			},
		},
	)
}
