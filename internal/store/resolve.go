package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// FindBySession resolves a caller-supplied session identifier against
// the inconsistently-typed sessionId field. Strategies run cheapest
// first and short-circuit on the first hit:
//
//  1. exact string equality on the trimmed input
//  2. integer equality on the input's digit sequence
//  3. unanchored substring match on the digit sequence
//  4. bounded scan comparing stringified sessionIds
//
// Strategies 2 and 3 are skipped when the input has no digits.
func (m *Mongo) FindBySession(ctx context.Context, sessionID string) (bson.M, error) {
	sid := strings.TrimSpace(sessionID)
	digits := Digits(sid)
	log := zap.L().With(zap.String("sessionId", sid))

	doc, err := m.findOne(ctx, bson.M{"sessionId": sid})
	if err == nil {
		log.Debug("session resolved by exact string")
		return doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, eris.Wrap(err, "store: exact session lookup")
	}

	if digits != "" {
		// Phone-number sessions are sometimes stored as int64.
		if n, perr := strconv.ParseInt(digits, 10, 64); perr == nil {
			doc, err = m.findOne(ctx, bson.M{"sessionId": n})
			if err == nil {
				log.Debug("session resolved by integer", zap.Int64("value", n))
				return doc, nil
			}
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return nil, eris.Wrap(err, "store: integer session lookup")
			}
		}

		doc, err = m.findOne(ctx, bson.M{"sessionId": bson.M{"$regex": digits}})
		if err == nil {
			log.Debug("session resolved by substring", zap.String("digits", digits))
			return doc, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eris.Wrap(err, "store: substring session lookup")
		}
	}

	doc, err = m.scanForSession(ctx, sid, digits)
	if err == nil {
		log.Debug("session resolved by fallback scan")
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	log.Warn("session not found")
	return nil, ErrNotFound
}

func (m *Mongo) findOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	if err := m.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// scanForSession is the brute-force fallback: walk a bounded window of
// documents and compare stringified sessionIds. Catches identifiers the
// indexed strategies miss, e.g. integers stored with extra digits.
func (m *Mongo) scanForSession(ctx context.Context, sid, digits string) (bson.M, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetLimit(ResolveScanLimit))
	if err != nil {
		return nil, eris.Wrap(err, "store: fallback session scan")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, eris.Wrap(err, "store: decode document")
		}
		docSID := ""
		if v := d["sessionId"]; v != nil {
			docSID = fmt.Sprint(v)
		}
		if docSID == sid || (digits != "" && strings.Contains(docSID, digits)) {
			return d, nil
		}
	}
	if err := cur.Err(); err != nil {
		return nil, eris.Wrap(err, "store: fallback scan cursor")
	}
	return nil, ErrNotFound
}
