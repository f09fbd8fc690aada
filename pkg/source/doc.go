// Package source reads and writes family records in a backing store.
//
// A [Source] returns the full profile and relationship tables on every fetch
// and reports changes through [Source.Watch] without saying what changed; the
// caller re-fetches and re-normalizes the whole snapshot. Implementations:
//   - memory: in-process tables for tests and the demo tree
//   - file: a JSON document on disk, watched with fsnotify
//   - supabase: the profiles and relationships tables of a Supabase project
//   - mongo: two MongoDB collections, watched with change streams
//
// # Adding Members
//
// [Source.AddProfile] validates the profile, stores it, and when a [Hint] is
// given also stores the relationship derived by [RelationshipFor]:
//
//	p, err := src.AddProfile(ctx, family.Profile{Name: "Ben", Role: "sibling"},
//	    &source.Hint{TargetID: meID, Type: source.HintSibling})
//
// # Feed
//
// [Feed] sits between a Source and the layout pipeline. It keeps the last
// snapshot that fetched successfully and reports failures to a [Notifier]
// instead of blanking the view.
package source
