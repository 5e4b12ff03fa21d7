package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

type FileHeader struct {
	Magic          uint32 // Magic number to identify our file type
	Version        uint16 // File format version
	MetadataLength uint32 // Length of the metadata section
}

type TableMetadata struct {
	Name        string
	ColumnCount int64
	Columns     []Column
	RowCount    int64
	DataOffset  uint32 // Where actual data begins in the file
}

const headerLength = 10

// rowCountTail is the size of the metadata fields that follow the row count.
const rowCountTail = 8 + 4

type BinarySerializer struct {
}

// Header Structure
// 1. Magic
// 2. Version
// 3. MetadataLength

func (b BinarySerializer) SerializeHeader(header FileHeader) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, header.Magic); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, header.Version); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, header.MetadataLength); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (b BinarySerializer) DeserializeHeader(buf *bytes.Reader) (FileHeader, error) {
	var header FileHeader

	if err := binary.Read(buf, binary.LittleEndian, &header.Magic); err != nil {
		return header, err
	}

	if header.Magic != MagicNumber {
		return FileHeader{}, fmt.Errorf("%w: invalid magic number", ErrCorruptFile)
	}

	if err := binary.Read(buf, binary.LittleEndian, &header.Version); err != nil {
		return FileHeader{}, err
	}

	if err := binary.Read(buf, binary.LittleEndian, &header.MetadataLength); err != nil {
		return FileHeader{}, err
	}

	return header, nil
}

// Metadata Structure
// 1. table name length
// 2. table name
// 3. column count
// 4. columns (name length, name, type, length)
// 5. row count
// 6. data offset

func (b BinarySerializer) SerializeMetadata(metadata TableMetadata) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := writeString(buf, metadata.Name); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, metadata.ColumnCount); err != nil {
		return nil, err
	}

	for _, col := range metadata.Columns {
		if err := writeString(buf, col.Name); err != nil {
			return nil, err
		}

		if err := binary.Write(buf, binary.LittleEndian, col.DataType); err != nil {
			return nil, err
		}

		if err := binary.Write(buf, binary.LittleEndian, col.Length); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, metadata.RowCount); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, metadata.DataOffset); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (b BinarySerializer) DeserializeMetadata(buf *bytes.Reader) (TableMetadata, error) {
	var metadata TableMetadata
	var err error

	if metadata.Name, err = readString(buf); err != nil {
		return TableMetadata{}, err
	}

	if err := binary.Read(buf, binary.LittleEndian, &metadata.ColumnCount); err != nil {
		return TableMetadata{}, err
	}

	if metadata.ColumnCount < 0 || metadata.ColumnCount > int64(buf.Len()) {
		return TableMetadata{}, fmt.Errorf("%w: bad column count %d", ErrCorruptFile, metadata.ColumnCount)
	}

	metadata.Columns = make([]Column, metadata.ColumnCount)
	for i := range metadata.Columns {
		if metadata.Columns[i].Name, err = readString(buf); err != nil {
			return TableMetadata{}, err
		}

		if err := binary.Read(buf, binary.LittleEndian, &metadata.Columns[i].DataType); err != nil {
			return TableMetadata{}, err
		}

		if err := binary.Read(buf, binary.LittleEndian, &metadata.Columns[i].Length); err != nil {
			return TableMetadata{}, err
		}
	}

	if err := binary.Read(buf, binary.LittleEndian, &metadata.RowCount); err != nil {
		return TableMetadata{}, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &metadata.DataOffset); err != nil {
		return TableMetadata{}, err
	}

	return metadata, nil
}

func (b BinarySerializer) SerializeRow(data Record, columns []Column) ([]byte, error) {
	buf := new(bytes.Buffer)

	for i, val := range data {
		col := columns[i]

		switch v := val.(type) {
		case int64:
			if col.DataType != TypeInt {
				return nil, fmt.Errorf("%w for column %s", ErrTypeMismatch, col.Name)
			}
			if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		case string:
			if col.DataType != TypeStr {
				return nil, fmt.Errorf("%w for column %s", ErrTypeMismatch, col.Name)
			}
			if len(v) > int(col.Length) {
				return nil, fmt.Errorf("%w for column %s", ErrStringTooLong, col.Name)
			}
			if err := writeString(buf, v); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unsupported data type for column %s", ErrTypeMismatch, col.Name)
		}
	}

	return buf.Bytes(), nil
}

func (b BinarySerializer) DeserializeRow(buf *bytes.Reader, columns []Column) (Record, error) {
	row := make(Record, 0, len(columns))

	for _, col := range columns {
		switch col.DataType {
		case TypeInt:
			var val int64
			if err := binary.Read(buf, binary.LittleEndian, &val); err != nil {
				return nil, err
			}
			row = append(row, val)
		case TypeStr:
			val, err := readString(buf)
			if err != nil {
				return nil, err
			}
			row = append(row, val)
		default:
			return nil, fmt.Errorf("%w: unknown column type %d", ErrCorruptFile, col.DataType)
		}
	}

	return row, nil
}

// SerializeTable lays out header, metadata and rows. DataOffset and
// MetadataLength are computed here.
func (b BinarySerializer) SerializeTable(table *Table) ([]byte, error) {
	metadata := TableMetadata{
		Name:        table.Schema.Name,
		ColumnCount: int64(len(table.Schema.Columns)),
		Columns:     table.Schema.Columns,
		RowCount:    int64(len(table.Rows)),
	}

	metadataBytes, err := b.SerializeMetadata(metadata)
	if err != nil {
		return nil, err
	}

	metadata.DataOffset = uint32(headerLength + len(metadataBytes))
	if metadataBytes, err = b.SerializeMetadata(metadata); err != nil {
		return nil, err
	}

	headerBytes, err := b.SerializeHeader(FileHeader{
		Magic:          MagicNumber,
		Version:        CurrentVersion,
		MetadataLength: uint32(len(metadataBytes)),
	})
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.Write(headerBytes)
	buf.Write(metadataBytes)
	for _, row := range table.Rows {
		rowBytes, err := b.SerializeRow(row, table.Schema.Columns)
		if err != nil {
			return nil, err
		}
		buf.Write(rowBytes)
	}

	return buf.Bytes(), nil
}

func (b BinarySerializer) DeserializeTable(data []byte) (*Table, TableMetadata, error) {
	buf := bytes.NewReader(data)

	if _, err := b.DeserializeHeader(buf); err != nil {
		return nil, TableMetadata{}, err
	}

	metadata, err := b.DeserializeMetadata(buf)
	if err != nil {
		return nil, TableMetadata{}, err
	}

	if metadata.RowCount < 0 {
		return nil, TableMetadata{}, fmt.Errorf("%w: bad row count %d", ErrCorruptFile, metadata.RowCount)
	}

	table := &Table{
		Schema: &Schema{Name: metadata.Name, Columns: metadata.Columns},
		Rows:   make([]Record, 0, min(metadata.RowCount, int64(buf.Len()))),
	}
	for i := int64(0); i < metadata.RowCount; i++ {
		row, err := b.DeserializeRow(buf, metadata.Columns)
		if err != nil {
			return nil, TableMetadata{}, fmt.Errorf("%w: row %d: %v", ErrCorruptFile, i, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, metadata, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(buf *bytes.Reader) (string, error) {
	var strLen uint16
	if err := binary.Read(buf, binary.LittleEndian, &strLen); err != nil {
		return "", err
	}

	if strLen == 0 {
		return "", nil
	}

	strBytes := make([]byte, strLen)
	if _, err := io.ReadFull(buf, strBytes); err != nil {
		return "", err
	}
	return string(strBytes), nil
}
