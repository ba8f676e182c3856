package controller

import (
	"github.com/watchparty/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdWSMw())
	mux.Use(c.loggerWSMw())

	// rooms
	mux.Handle("joinSession", wsrouter.Typed(c.handleWSJoinSession))
	mux.Handle("leaveSession", wsrouter.Typed(c.handleWSLeaveSession))

	// playback
	mux.Handle("mediaStateUpdate", wsrouter.Typed(c.handleWSMediaStateUpdate))
	mux.Handle("seekTo", wsrouter.Typed(c.handleWSSeekTo))

	// chat
	mux.Handle("sendMessage", wsrouter.Typed(c.handleWSSendMessage))
	mux.Handle("startTyping", wsrouter.Typed(c.handleWSStartTyping))
	mux.Handle("stopTyping", wsrouter.Typed(c.handleWSStopTyping))

	return mux
}
