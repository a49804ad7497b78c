// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package parudd implements the core of a parallel decision-diagram engine: a
lock-free content-addressed node table for canonical (Multi-Terminal) Binary
Decision Diagrams, and a dynamic variable reordering subsystem built on
adjacent-variable swaps and Rudell-style sifting.

Basics

An Engine owns a fixed-capacity Unique Table (type Table), a Levels registry
mapping variables to their current position in the order, and a minimal
Boolean kernel (Ithvar, Apply, Ite) used to build and combine BDD nodes.
Nodes are addressed by 40-bit indices into the table; Edges add a single
complement bit so that negation never duplicates a node.

Reordering

When the number of live nodes crosses a configurable threshold, the
reordering controller (reorder.go) stops concurrent BDD operations, builds a
Manual Reference Count table and an Interaction Matrix over the current
graph, and runs the sifting engine (sifting.go), which repeatedly applies
VSwap (varswap.go) to move each variable through the order in search of a
smaller graph.

Storage

There is a single table layout: a lock-free chained hash set sized at
construction, with per-worker region claiming for wait-free allocation.
Earlier designs that mixed chaining with linear probing behind a build flag
were dropped; chaining is the only layout that supports the per-bucket
unhash/rehash VSwap depends on.
*/
package parudd
