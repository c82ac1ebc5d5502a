package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/phosphorco/legalnlp/internal/lnlp/document"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// lineResult is one streamed line's tokenized text, sent as the client's
// document arrives line by line.
type lineResult struct {
	LineIndex int    `json:"line_index"`
	Text      string `json:"text"`
	Error     string `json:"error,omitempty"`
}

// registerWebsocket adds GET /v1/analyze/stream: the client sends one text
// message per document line, and receives one lineResult per line as soon
// as it's tokenized. Unlike POST /v1/analyze, this never waits for the
// whole document before returning feedback. Each lineResult carries only
// the line's tokenized text; no resolver runs on streamed lines.
func (s *Server) registerWebsocket(r *gin.Engine) {
	r.GET("/v1/analyze/stream", s.handleStream)
}

func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.LogPipelineError("stream-upgrade", err)
		return
	}
	defer conn.Close()

	for i := 0; ; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, text, err := conn.ReadMessage()
		if err != nil {
			return
		}

		line := document.Tokenize(string(text))
		result := lineResult{LineIndex: i, Text: line.Text()}
		if err := conn.WriteJSON(result); err != nil {
			s.logger.LogPipelineError("stream-write", err)
			return
		}
	}
}
