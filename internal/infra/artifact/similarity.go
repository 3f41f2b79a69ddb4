package artifact

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/osa030/stairway/internal/domain/catalog"
)

var npyMagic = []byte("\x93NUMPY")

var (
	npyDescrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	npyFortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	npyShapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// npyHeader is the parsed array description of a .npy file.
type npyHeader struct {
	descr   string
	fortran bool
	shape   []int
}

func loadSimilarityNPY(path string) (*catalog.Similarity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open similarity file")
	}
	defer f.Close()

	return readSimilarityNPY(bufio.NewReader(f))
}

// readSimilarityNPY decodes a 2-D little-endian float array written by numpy.save.
func readSimilarityNPY(r io.Reader) (*catalog.Similarity, error) {
	header, err := readNPYHeader(r)
	if err != nil {
		return nil, err
	}
	if len(header.shape) != 2 || header.shape[0] != header.shape[1] {
		return nil, errors.Newf("similarity array must be square 2-D, got shape %v", header.shape)
	}
	n := header.shape[0]

	values := make([]float64, n*n)
	switch header.descr {
	case "<f8":
		if err := binary.Read(r, binary.LittleEndian, values); err != nil {
			return nil, errors.Wrap(err, "failed to read float64 data")
		}
	case "<f4":
		buf := make([]float32, n*n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, errors.Wrap(err, "failed to read float32 data")
		}
		for i, v := range buf {
			values[i] = float64(v)
		}
	default:
		return nil, errors.Newf("unsupported npy dtype %q (want <f8 or <f4)", header.descr)
	}

	if header.fortran {
		transposeSquare(values, n)
	}

	return catalog.NewSimilarityFlat(n, values)
}

func readNPYHeader(r io.Reader) (*npyHeader, error) {
	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, errors.Wrap(err, "failed to read npy preamble")
	}
	if !bytes.Equal(prefix[:len(npyMagic)], npyMagic) {
		return nil, errors.New("not an npy file")
	}

	var headerLen int
	switch major := prefix[len(npyMagic)]; major {
	case 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, errors.Wrap(err, "failed to read npy header length")
		}
		headerLen = int(l)
	case 2, 3:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, errors.Wrap(err, "failed to read npy header length")
		}
		headerLen = int(l)
	default:
		return nil, errors.Newf("unsupported npy version %d", major)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, errors.Wrap(err, "failed to read npy header")
	}
	return parseNPYHeader(string(raw))
}

func parseNPYHeader(raw string) (*npyHeader, error) {
	descr := npyDescrRe.FindStringSubmatch(raw)
	fortran := npyFortranRe.FindStringSubmatch(raw)
	shape := npyShapeRe.FindStringSubmatch(raw)
	if descr == nil || fortran == nil || shape == nil {
		return nil, errors.Newf("malformed npy header: %s", strings.TrimSpace(raw))
	}

	h := &npyHeader{
		descr:   descr[1],
		fortran: fortran[1] == "True",
	}
	for _, dim := range strings.Split(shape[1], ",") {
		dim = strings.TrimSpace(dim)
		if dim == "" {
			continue
		}
		v, err := strconv.Atoi(dim)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid npy shape %q", shape[1])
		}
		h.shape = append(h.shape, v)
	}
	return h, nil
}

func transposeSquare(values []float64, n int) {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			values[i*n+j], values[j*n+i] = values[j*n+i], values[i*n+j]
		}
	}
}

func loadSimilarityJSON(path string) (*catalog.Similarity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read similarity file")
	}

	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "failed to parse similarity rows")
	}
	return catalog.NewSimilarity(rows)
}
