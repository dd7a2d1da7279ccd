/*
Package cirfile implements a fixed-capacity circular log stored in a single
file.

The file starts with a 256 byte text header:

	CBUF01 [maxsize] [fileoffset] [startpos] [endpos]

padded with spaces and terminated by a newline. The data region follows and
never grows past maxsize bytes. Readers address bytes by their logical offset
in the stream ever appended; once the ring is full the oldest bytes are
evicted and fileoffset moves forward.

Writers hold an exclusive flock(2) and readers a shared one, so independent
processes can share a file. Operations only wait for the lock when their
context can be cancelled.
*/
package cirfile
