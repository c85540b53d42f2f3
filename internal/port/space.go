package port

// SpaceQuerier reports free space at the filesystem mount containing a path.
// Results must never be cached across cycles; free space changes outside
// this system's control.
type SpaceQuerier interface {
	// FreeBytes returns free and total bytes of the volume holding path.
	FreeBytes(path string) (free int64, total int64, err error)
}
