// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: pebble, sqlite or postgres (default: pebble)
  - DatabaseURL: Pebble directory or SQL DSN (required)
  - SessionSecret: Secret for signing session tokens (required)
  - SessionTTL: Session lifetime (default: 12h)
  - AdminID: Participant id treated as the bootstrap admin (default: admin)
  - OpenSignup: Let signed-in users register themselves as Voter or Organizer
  - IdentityCacheSize: Resolved participants kept in memory (default: 1024)
  - OAuthClientID, OAuthClientSecret, OAuthRedirectURL: Google sign-in (optional)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-env            Dotenv file (default: .env)
	-session-secret Session signing secret
	-admin          Bootstrap admin id
	-open-signup    Enable self sign-up
	-log-level      Log level

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	SESSION_SECRET      → -session-secret
	ADMIN_ID            → -admin
	OPEN_SIGNUP         → -open-signup
	LOG_LEVEL           → -log-level
	SESSION_TTL, IDENTITY_CACHE_SIZE,
	GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, OAUTH_REDIRECT_URL

CLI flags take precedence over environment variables, and variables already
in the environment take precedence over the dotenv file.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SESSION_SECRET must be provided
*/
package cliparse
