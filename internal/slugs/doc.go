// Package slugs derives post slugs from legacy permalink fields, repairs slugs
// the target platform would reject for their length, and resolves collisions
// across a batch of posts.
//
// The target platform accepts slugs between MinLength and MaxLength bytes.
// Long slugs are cut to TruncatedLength so the uniqueness pass can append a
// "-<n>" suffix without leaving the accepted range.
package slugs
