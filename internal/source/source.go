package source

// Video is the source footage that narration windows are cut from.
type Video struct {
	Path     string
	Duration float64
	Identity string
}

// Frame is one sampled still of the source video.
type Frame struct {
	Index     int
	Timestamp float64
	Path      string
}
