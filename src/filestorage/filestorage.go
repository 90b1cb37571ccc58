package filestorage

type FileStorage interface {
	Store(domain string, contents []string) (string, error)
}
