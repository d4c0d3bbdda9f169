package server

import (
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/samber/mo"
)

// Publisher announces changes to clients.
type Publisher interface {
	PublishLyrics(lines []string)
	PublishSegment(segment Segment)
}

// Server records what the loop reports in its Cache and announces it through
// its publishers. Segments equal to the previous one are not announced.
type Server struct {
	cache      *Cache
	publishers []Publisher
}

func New(cache *Cache, publishers ...Publisher) *Server {
	return &Server{cache: cache, publishers: publishers}
}

// Cache returns the cache backing queries.
func (s *Server) Cache() *Cache {
	return s.cache
}

func (s *Server) OnLyricsChanged(lines mo.Option[[]string]) {
	s.cache.SetLyrics(lines)
	log.Infof("server: lyrics changed, %d lines", len(lines.OrEmpty()))

	current := s.cache.Lines()
	for _, p := range s.publishers {
		p.PublishLyrics(current)
	}
}

func (s *Server) OnActiveSegmentChanged(mark mo.Option[lrc.TimingMark]) {
	if !s.cache.SetSegment(mark) {
		return
	}

	segment := SegmentOf(mark)
	log.Debugf("server: active segment %s", segment)

	for _, p := range s.publishers {
		p.PublishSegment(segment)
	}
}
