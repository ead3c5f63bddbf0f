// Package config resolves the hostpulse configuration.
//
// Sources are applied in order, each overriding the previous:
//
//  1. built-in defaults
//  2. an optional YAML file (-config)
//  3. environment variables, after an optional .env file is loaded
//
// The summarizer credential is never read from YAML. Load looks up the
// environment variable named by summarizer.api_key_env (OPENAI_API_KEY by
// default) and keeps the value out of every serialized form. A missing
// credential is not an error.
//
// Recognised environment variables:
//   - HTTP_PORT, GRPC_PORT, SERVICE_NAME, APP_VERSION, GREETING, DISK_PATH
//   - LOG_LEVEL
//   - OPENAI_MODEL, OPENAI_BASE_URL, SUMMARIZER_API_KEY_ENV,
//     SUMMARIZER_TIMEOUT, SUMMARIZER_MAX_TOKENS
//   - STREAM_INTERVAL, PROBE_INTERVAL
//
// Watch reloads the YAML file on change. Only the log level is applied live.
package config
