// Package api implements the hostpulse HTTP JSON API.
//
// New(cfg, source, explainer) returns an http.Handler that serves:
//
//	GET      /                       {status, message} greeting
//	GET      /api/status             service, host, UTC time and version
//	GET      /api/system             identity, raw metrics and runtime info
//	GET      /api/health             scored health report
//	GET|POST /api/ai/health-explain  model-written narrative of the report
//
// All endpoints respond with Content-Type: application/json and return 405
// for unsupported methods. Chain, RequestID, Recovery and Logging provide the
// middleware stack used by the server binary. No external HTTP framework is used.
package api
