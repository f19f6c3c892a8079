// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package websocket is the push transport for chat messages, notifications
and presence.

It uses gorilla/websocket with a hub-client architecture. The hub owns the
sockets of this node, keyed by registry channel ID, and the chat rooms each
socket joined. It implements dispatch.Pusher, so the dispatcher never sees a
connection.

Key Components:

  - Hub: Live sockets, room membership, user and room delivery
  - Client: One authenticated socket with read and write pumps
  - Handler: HTTP upgrade, registration and inbound frame routing
  - Relay: Cross-node fan-out over Watermill (gochannel or NATS)

Connection lifecycle:

 1. The upgrade request is authenticated (token query parameter or bearer)
 2. A fresh channel ID is allocated and the client registered with the hub
 3. dispatch.Connect records the channel and returns the user's chats
 4. The client joins those rooms and its pumps start
 5. When the read pump ends, the hub drops the client and
    dispatch.Disconnect removes the channel. A superseded channel is a no-op.

Delivery:

PushToUser resolves the user's single current channel through the
registry. A socket on this node gets the event directly; otherwise the
event is relayed and the node holding the channel delivers it. PushToRoom
sends to every joined socket whose channel is still current for its user,
so a superseded socket stops receiving room events, then relays the event
to the other nodes.

Delivery never blocks. A socket whose send queue is full is closed as a
slow consumer; persistence, not delivery, is the durability guarantee.

Inbound frames ({"type": ..., "data": ...}):

  - send_message: {chatId, content, type?, restaurantId?}
  - join_chat, leave_chat, mark_read: {chatId}
  - ping: answered with pong

Each socket is also limited by a token bucket (golang.org/x/time/rate). A
client exceeding it is closed with a policy-violation close frame. This
guards the server; the per-user message limit lives in the dispatcher.

Outbound events are dispatch.Event values: new_message, new_notification,
messages_read, user_online, user_offline and error.

Thread Safety:

Hub and Relay are safe for concurrent use. Frames of one socket are
handled in order; frames of different sockets run concurrently.
*/
package websocket
