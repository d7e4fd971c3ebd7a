package manifest

// Fields is the fixed dataset schema, in persisted column order.
var Fields = []string{
	"subject_id",
	"image_uid",
	"split",
	"sex",
	"age",
	"diagnosis",
	"last_diagnosis",
	"image_path",
	"segm_path",
	"latent_path",
}

// Row is one dataset record. Empty string means unknown.
type Row struct {
	SubjectID     string
	ImageUID      string
	Split         string
	Sex           string
	Age           string
	Diagnosis     string
	LastDiagnosis string
	ImagePath     string
	SegmPath      string
	LatentPath    string
}

func (r Row) record() []string {
	return []string{
		r.SubjectID,
		r.ImageUID,
		r.Split,
		r.Sex,
		r.Age,
		r.Diagnosis,
		r.LastDiagnosis,
		r.ImagePath,
		r.SegmPath,
		r.LatentPath,
	}
}
