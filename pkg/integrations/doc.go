// Package integrations provides the rate-limited HTTP core shared by every
// Nexus API client.
//
// # Overview
//
// Each external service has its own subpackage:
//
//   - [slack]: Slack Web API (channels, members, history, messages)
//   - [hubspot]: HubSpot CRM (contacts, deals, tasks)
//   - [beam]: Beam agent platform (tasks, streaming agent runs)
//   - [airtable]: Airtable (bases, records, base-list cache file)
//   - [notion]: Notion (databases, pages, search)
//   - [heyreach]: HeyReach (campaigns, leads)
//   - [fathom]: Fathom (meetings, transcripts)
//   - [google]: Google Workspace (OAuth2, Calendar)
//
// # Client Pattern
//
// All clients follow a consistent pattern:
//
//	client := slack.New(token)
//	channels, err := client.ListChannels(ctx, 0)
//
// The shared [Client] handles:
//   - credential injection via an [Auth] strategy (bearer token, custom
//     header, or Beam's exchange-and-refresh flow)
//   - retry with exponential backoff and jitter on 429/5xx/timeouts,
//     honoring Retry-After
//   - the three-tier error taxonomy (configuration, transient, permanent)
//   - optional file-backed response caching
//
// # Pagination
//
// Cursor-paginated listings are drained through [Paginate], which follows
// the vendor's opaque cursor until empty with a small courtesy delay
// between pages.
//
// # Adding an Integration
//
// To wrap a new service: create a subpackage, embed *[Client] with the
// service's base URL and auth strategy, define response structs for the
// fields the workspace actually reads, and register a command tree in
// internal/cli.
//
// [slack]: github.com/nexushq/nexus/pkg/integrations/slack
// [hubspot]: github.com/nexushq/nexus/pkg/integrations/hubspot
// [beam]: github.com/nexushq/nexus/pkg/integrations/beam
// [airtable]: github.com/nexushq/nexus/pkg/integrations/airtable
// [notion]: github.com/nexushq/nexus/pkg/integrations/notion
// [heyreach]: github.com/nexushq/nexus/pkg/integrations/heyreach
// [fathom]: github.com/nexushq/nexus/pkg/integrations/fathom
// [google]: github.com/nexushq/nexus/pkg/integrations/google
package integrations
