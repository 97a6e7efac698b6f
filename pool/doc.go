// Package pool
// Author: momentics <momentics@gmail.com>
//
// Reusable receive buffers for the fetch tasks. Every task performs one
// bounded receive per readiness notification; the chunk it reads into is
// taken from a BytePool and returned once the bytes are handed to the parser.
package pool
