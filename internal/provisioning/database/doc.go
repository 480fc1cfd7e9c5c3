// Package database provisions one MySQL database and one MySQL user per site.
//
// All statements for a batch run over a single administrative connection
// held by a [Session]. The session is opened by the stage's preflight, before
// any site is attempted, and closed as soon as the database column finishes,
// so it never outlives the database stage.
//
// Two modes are supported:
//
//   - [ModeCleanSlate] drops the database and user if they exist and recreates
//     them. Running it twice converges to the same end state.
//   - [ModeUseExisting] keeps existing data and only ensures the database, the
//     user, its password and its grants exist.
package database
