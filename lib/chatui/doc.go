// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatui implements a full-screen terminal interface for chat
// sessions. Built on bubbletea (Elm architecture), it provides a
// scrolling transcript pane, a single-line prompt, a live status bar,
// and a fuzzy-filtered role picker overlay, connected to the
// conversation engine via the [chat.Assistant] interface.
//
// Streaming replies flow through bubbletea's message loop: a command
// goroutine blocks on the next stream event and delivers it as a
// model message, re-arming itself until the terminal event arrives.
// Fragments are appended to the transcript as they arrive; the
// completed reply is re-rendered as markdown.
//
// Data flow:
//
//	[completion backend]
//	        | (chat.Assistant / chat.Stream)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package chatui
