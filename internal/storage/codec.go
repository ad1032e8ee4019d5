package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/Faultbox/blueycraft/pkg/voxel"
)

// Record layout before compression:
//
//	magic   [4]byte "BCK1"
//	width   uint16
//	height  uint16
//	blocks  width*height*width bytes, in grid index order
var recordMagic = []byte("BCK1")

const headerSize = 8

func encodeGrid(g *voxel.ChunkGrid) []byte {
	raw := g.Raw()
	buf := make([]byte, headerSize, headerSize+len(raw))
	copy(buf, recordMagic)
	binary.LittleEndian.PutUint16(buf[4:], uint16(g.Width()))
	binary.LittleEndian.PutUint16(buf[6:], uint16(g.Height()))
	for _, id := range raw {
		buf = append(buf, byte(id))
	}
	return buf
}

func decodeGrid(coord voxel.ChunkCoord, data []byte) (*voxel.ChunkGrid, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], recordMagic) {
		return nil, fmt.Errorf("%w: bad header", ErrCorruptChunk)
	}
	width := int(binary.LittleEndian.Uint16(data[4:]))
	height := int(binary.LittleEndian.Uint16(data[6:]))
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty dimensions %dx%d", ErrCorruptChunk, width, height)
	}

	body := data[headerSize:]
	if len(body) != width*height*width {
		return nil, fmt.Errorf("%w: %d block bytes for %dx%d grid", ErrCorruptChunk, len(body), width, height)
	}

	blocks := make([]voxel.BlockID, len(body))
	for i, b := range body {
		blocks[i] = voxel.BlockID(b)
	}

	g := voxel.NewChunkGridSize(coord, width, height)
	if err := g.LoadRaw(blocks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}
	return g, nil
}

// Keys are "chunk/<seed>/<x>/<z>".
func seedPrefix(seed int64) []byte {
	return []byte("chunk/" + strconv.FormatInt(seed, 10) + "/")
}

func chunkKey(seed int64, c voxel.ChunkCoord) []byte {
	key := seedPrefix(seed)
	key = strconv.AppendInt(key, int64(c.X), 10)
	key = append(key, '/')
	key = strconv.AppendInt(key, int64(c.Z), 10)
	return key
}

func parseChunkKey(key []byte, prefixLen int) (voxel.ChunkCoord, error) {
	rest := key[prefixLen:]
	i := bytes.IndexByte(rest, '/')
	if i < 0 {
		return voxel.ChunkCoord{}, fmt.Errorf("missing separator in %q", key)
	}
	x, err := strconv.Atoi(string(rest[:i]))
	if err != nil {
		return voxel.ChunkCoord{}, err
	}
	z, err := strconv.Atoi(string(rest[i+1:]))
	if err != nil {
		return voxel.ChunkCoord{}, err
	}
	return voxel.ChunkCoord{X: x, Z: z}, nil
}
