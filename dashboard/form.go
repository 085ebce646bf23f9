package dashboard

import "student-grade-api/models"

// PredictForm holds the inputs the prediction page asks for. Yes/no fields
// carry the model's own "yes"/"no" values.
type PredictForm struct {
	G1         int    `form:"G1" binding:"min=0,max=20"`
	G2         int    `form:"G2" binding:"min=0,max=20"`
	Failures   int    `form:"failures" binding:"min=0,max=4"`
	Absences   int    `form:"absences" binding:"min=0,max=93"`
	Studytime  int    `form:"studytime" binding:"min=1,max=4"`
	Schoolsup  string `form:"schoolsup" binding:"oneof=yes no"`
	Famsup     string `form:"famsup" binding:"oneof=yes no"`
	Paid       string `form:"paid" binding:"oneof=yes no"`
	Internet   string `form:"internet" binding:"oneof=yes no"`
	Higher     string `form:"higher" binding:"oneof=yes no"`
	Activities string `form:"activities" binding:"oneof=yes no"`
	Freetime   int    `form:"freetime" binding:"min=1,max=5"`
	Goout      int    `form:"goout" binding:"min=1,max=5"`
	Traveltime int    `form:"traveltime" binding:"min=1,max=4"`
}

func DefaultPredictForm() PredictForm {
	return PredictForm{
		G1: 10, G2: 10, Failures: 0, Absences: 2, Studytime: 2,
		Schoolsup: "no", Famsup: "no", Paid: "no", Internet: "no", Higher: "yes", Activities: "no",
		Freetime: 3, Goout: 3, Traveltime: 1,
	}
}

// Student fills the fields the form does not ask for with fixed neutral
// values.
func (f PredictForm) Student() models.Student {
	return models.Student{
		School: "GP", Sex: "F", Age: 17, Address: "U", Famsize: "GT3", Pstatus: "T",
		Medu: 2, Fedu: 2, Mjob: "other", Fjob: "other", Reason: "course", Guardian: "mother",
		Nursery: "yes", Romantic: "no", Famrel: 4, Dalc: 1, Walc: 1, Health: 4,

		G1: f.G1, G2: f.G2, Failures: f.Failures, Absences: f.Absences, Studytime: f.Studytime,
		Schoolsup: f.Schoolsup, Famsup: f.Famsup, Paid: f.Paid, Internet: f.Internet,
		Higher: f.Higher, Activities: f.Activities, Freetime: f.Freetime, Goout: f.Goout,
		Traveltime: f.Traveltime,
	}
}

type option struct {
	Value int
	Label string
}

var (
	studytimeOptions  = []option{{1, "< 2h"}, {2, "2 to 5h"}, {3, "5 to 10h"}, {4, "> 10h"}}
	traveltimeOptions = []option{{1, "< 15 min"}, {2, "15 to 30 min"}, {3, "30 min to 1h"}, {4, "> 1h"}}
)
