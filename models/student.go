package models

// Student is one StudentRecord: the raw inputs of the grade model. Field and
// JSON names follow the column names of the source datasets.
type Student struct {
	School     string `json:"school"`
	Sex        string `json:"sex"`
	Age        int    `json:"age"`
	Address    string `json:"address"`
	Famsize    string `json:"famsize"`
	Pstatus    string `json:"Pstatus"`
	Medu       int    `json:"Medu"`
	Fedu       int    `json:"Fedu"`
	Mjob       string `json:"Mjob"`
	Fjob       string `json:"Fjob"`
	Reason     string `json:"reason"`
	Guardian   string `json:"guardian"`
	Traveltime int    `json:"traveltime"`
	Studytime  int    `json:"studytime"`
	Failures   int    `json:"failures"`
	Schoolsup  string `json:"schoolsup"`
	Famsup     string `json:"famsup"`
	Paid       string `json:"paid"`
	Activities string `json:"activities"`
	Nursery    string `json:"nursery"`
	Higher     string `json:"higher"`
	Internet   string `json:"internet"`
	Romantic   string `json:"romantic"`
	Famrel     int    `json:"famrel"`
	Freetime   int    `json:"freetime"`
	Goout      int    `json:"goout"`
	Dalc       int    `json:"Dalc"`
	Walc       int    `json:"Walc"`
	Health     int    `json:"health"`
	Absences   int    `json:"absences"`
	G1         int    `json:"G1"`
	G2         int    `json:"G2"`
}
