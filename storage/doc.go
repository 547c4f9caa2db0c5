// Package storage implements the three XISF storage engines.
//
// The monolithic engine frames a unit as a single .xisf file: a 16-byte
// header, the XML header and the attached block payloads. Writing solves a
// small fixed point: attachment positions depend on the XML length while
// the XML length depends on the printed width of every position, so the
// header is re-emitted with refined positions until its length settles.
//
// The distributed engine reads and writes .xish headers, which are plain
// UTF-8 XML referencing external resources.
//
// The data blocks file engine navigates .xisb files: a signature header
// followed by a linked list of fixed-size index nodes mapping unique ids to
// block extents. A writer counterpart produces the same format bit for bit.
package storage
