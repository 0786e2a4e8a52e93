// Package collections serves named in-memory collections as paginated,
// sortable JSON for table widgets.
//
// The handler responds to GET and HEAD requests under
// <RoutePath>/<collection> and reads page (1-based), pageSize, sort,
// order (asc|desc), q and cursor parameters. Responses have the shape
// {"data": [...], "total": n} plus "nextCursor" while rows remain. The
// embedded demo data under data/ backs the preview server.
package collections
