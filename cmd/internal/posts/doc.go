// Package posts implements owner-scoped text posts: validation, persistence,
// a per-owner read cache, and the create/list/delete orchestration that ties
// them together.
//
// Cache contract: every successful write invalidates the owner's entry after
// the store commits, and a read that raced with that invalidation never
// re-populates the entry with pre-write data (see Cache.Begin / Cache.Fill).
package posts
