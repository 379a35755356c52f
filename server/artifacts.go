package server

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultArtifactCapacity = 32

// artifactStore keeps the files of recent generations for download. The least
// recently downloaded generation is evicted once capacity is reached.
type artifactStore struct {
	files *lru.Cache[string, map[string]string]
}

func newArtifactStore(capacity int) *artifactStore {
	if capacity <= 0 {
		capacity = defaultArtifactCapacity
	}
	cache, err := lru.New[string, map[string]string](capacity)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &artifactStore{files: cache}
}

func (s *artifactStore) put(files map[string]string) string {
	id := uuid.NewString()
	s.files.Add(id, files)
	return id
}

func (s *artifactStore) get(id, name string) (string, bool) {
	files, ok := s.files.Get(id)
	if !ok {
		return "", false
	}
	text, ok := files[name]
	return text, ok
}
