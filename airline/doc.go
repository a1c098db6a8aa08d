// Copyright (c) 2025 Scaper Labs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package airline carries the relational schema for the fictional airline
reference dataset. It is DDL only: fifteen normalized tables connected by
foreign keys, with composite primary keys on the per-date instance tables.

The schema is portable across PostgreSQL and SQLite. The certctl CLI can
print it (certctl airline) or apply it to a database (certctl airline --apply).
*/
package airline
