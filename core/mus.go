// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types persisted in the catalog store. Field order
// is part of the wire format; append new fields, never reorder.
var (
	UUIDMUS             = uuidMUS{}
	TimeMUS             = timeMUS{}
	DocumentMUS         = documentMUS{}
	DocumentVersionMUS  = documentVersionMUS{}
	ValidationIssueMUS  = validationIssueMUS{}
	ValidationResultMUS = validationResultMUS{}
)

var (
	_ mus.Serializer[uuid.UUID]        = UUIDMUS
	_ mus.Serializer[time.Time]        = TimeMUS
	_ mus.Serializer[Document]         = DocumentMUS
	_ mus.Serializer[DocumentVersion]  = DocumentVersionMUS
	_ mus.Serializer[ValidationIssue]  = ValidationIssueMUS
	_ mus.Serializer[ValidationResult] = ValidationResultMUS
)

type uuidMUS struct{}

func (uuidMUS) Marshal(id uuid.UUID, bs []byte) int {
	return ord.String.Marshal(id.String(), bs)
}

func (uuidMUS) Unmarshal(bs []byte) (uuid.UUID, int, error) {
	s, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return uuid.Nil, n, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, n, err
	}
	return id, n, nil
}

func (uuidMUS) Size(id uuid.UUID) int {
	return ord.String.Size(id.String())
}

func (uuidMUS) Skip(bs []byte) (int, error) {
	return ord.String.Skip(bs)
}

// timeMUS stores timestamps as microseconds since the Unix epoch in UTC.
type timeMUS struct{}

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeMUS) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = UUIDMUS.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.DocumentType, bs[n:])
	n += ord.String.Marshal(d.State, bs[n:])
	n += ord.Bool.Marshal(d.Indexed, bs[n:])
	n += TimeMUS.Marshal(d.CreatedAt, bs[n:])
	n += TimeMUS.Marshal(d.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var m int
	if d.ID, n, err = UUIDMUS.Unmarshal(bs); err != nil {
		return d, n, err
	}
	if d.Title, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.DocumentType, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.State, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.Indexed, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.CreatedAt, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.UpdatedAt, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	return d, n, nil
}

func (documentMUS) Size(d Document) int {
	return UUIDMUS.Size(d.ID) +
		ord.String.Size(d.Title) +
		ord.String.Size(d.DocumentType) +
		ord.String.Size(d.State) +
		ord.Bool.Size(d.Indexed) +
		TimeMUS.Size(d.CreatedAt) +
		TimeMUS.Size(d.UpdatedAt)
}

func (s documentMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type documentVersionMUS struct{}

func (documentVersionMUS) Marshal(v DocumentVersion, bs []byte) (n int) {
	n = UUIDMUS.Marshal(v.ID, bs)
	n += UUIDMUS.Marshal(v.DocumentID, bs[n:])
	n += varint.Int.Marshal(v.VersionNumber, bs[n:])
	n += ord.String.Marshal(v.BlobPath, bs[n:])
	n += ord.String.Marshal(v.FileName, bs[n:])
	n += ord.String.Marshal(v.ContentType, bs[n:])
	n += varint.Int64.Marshal(v.ByteSize, bs[n:])
	n += TimeMUS.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (documentVersionMUS) Unmarshal(bs []byte) (v DocumentVersion, n int, err error) {
	var m int
	if v.ID, n, err = UUIDMUS.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.DocumentID, m, err = UUIDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.VersionNumber, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.BlobPath, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.FileName, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ContentType, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.ByteSize, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.CreatedAt, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (documentVersionMUS) Size(v DocumentVersion) int {
	return UUIDMUS.Size(v.ID) +
		UUIDMUS.Size(v.DocumentID) +
		varint.Int.Size(v.VersionNumber) +
		ord.String.Size(v.BlobPath) +
		ord.String.Size(v.FileName) +
		ord.String.Size(v.ContentType) +
		varint.Int64.Size(v.ByteSize) +
		TimeMUS.Size(v.CreatedAt)
}

func (s documentVersionMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type validationIssueMUS struct{}

func (validationIssueMUS) Marshal(i ValidationIssue, bs []byte) (n int) {
	n = ord.String.Marshal(i.Section, bs)
	n += ord.String.Marshal(string(i.Severity), bs[n:])
	n += ord.String.Marshal(i.Message, bs[n:])
	return n
}

func (validationIssueMUS) Unmarshal(bs []byte) (i ValidationIssue, n int, err error) {
	var m int
	if i.Section, n, err = ord.String.Unmarshal(bs); err != nil {
		return i, n, err
	}
	var severity string
	if severity, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return i, n + m, err
	}
	i.Severity = Severity(severity)
	n += m
	if i.Message, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return i, n + m, err
	}
	n += m
	return i, n, nil
}

func (validationIssueMUS) Size(i ValidationIssue) int {
	return ord.String.Size(i.Section) +
		ord.String.Size(string(i.Severity)) +
		ord.String.Size(i.Message)
}

func (s validationIssueMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type validationResultMUS struct{}

func (validationResultMUS) Marshal(r ValidationResult, bs []byte) (n int) {
	n = UUIDMUS.Marshal(r.ID, bs)
	n += UUIDMUS.Marshal(r.VersionID, bs[n:])
	n += varint.Int.Marshal(len(r.Issues), bs[n:])
	for _, issue := range r.Issues {
		n += ValidationIssueMUS.Marshal(issue, bs[n:])
	}
	n += varint.Float64.Marshal(r.Score, bs[n:])
	n += ord.Bool.Marshal(r.Valid, bs[n:])
	n += TimeMUS.Marshal(r.CreatedAt, bs[n:])
	return n
}

func (validationResultMUS) Unmarshal(bs []byte) (r ValidationResult, n int, err error) {
	var m int
	if r.ID, n, err = UUIDMUS.Unmarshal(bs); err != nil {
		return r, n, err
	}
	if r.VersionID, m, err = UUIDMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if count > 0 {
		r.Issues = make([]ValidationIssue, count)
		for idx := 0; idx < count; idx++ {
			if r.Issues[idx], m, err = ValidationIssueMUS.Unmarshal(bs[n:]); err != nil {
				return r, n + m, err
			}
			n += m
		}
	}
	if r.Score, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.Valid, m, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	if r.CreatedAt, m, err = TimeMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + m, err
	}
	n += m
	return r, n, nil
}

func (validationResultMUS) Size(r ValidationResult) int {
	size := UUIDMUS.Size(r.ID) +
		UUIDMUS.Size(r.VersionID) +
		varint.Int.Size(len(r.Issues))
	for _, issue := range r.Issues {
		size += ValidationIssueMUS.Size(issue)
	}
	return size +
		varint.Float64.Size(r.Score) +
		ord.Bool.Size(r.Valid) +
		TimeMUS.Size(r.CreatedAt)
}

func (s validationResultMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}
