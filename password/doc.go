// Package password provides argon2id password hashing in PHC string format.
// It is the default [ward.Hasher]; hosts with an existing credential scheme
// supply their own implementation instead.
package password
