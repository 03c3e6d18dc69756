package model

type ChapterMarker struct {
	Mark string  `json:"mark"`
	Time float64 `json:"time"`
}

type PartName struct {
	Long  string `yaml:"long" json:"long"`
	Short string `yaml:"short" json:"short"`
}
