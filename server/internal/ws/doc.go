// Package ws streams health reports over WebSocket.
//
// New(reporter, interval) creates a Hub. Hub.Run(ctx) scores the host once per
// interval and pushes the result to every client; it closes all connections
// when ctx is cancelled. Hub.ServeHTTP is mounted at /ws/health and sends one
// report as soon as a client connects.
//
// Message format:
//
//	{
//	  "event": "health",
//	  "data":  { /* same schema as GET /api/health */ }
//	}
//
// Clients whose send buffer fills up are disconnected.
package ws
