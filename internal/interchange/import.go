package interchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/constants"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

// ImportOptions tunes an import.
type ImportOptions struct {
	// Atomic runs all four passes in one transaction, so a store failure
	// leaves nothing behind. By default each pass commits on its own and
	// earlier passes stand when a later one fails.
	Atomic bool
}

type line struct {
	num int
	row row
}

type importer struct {
	report *Report

	lists, habits, patterns, completions []line

	listIDs    map[uuid.UUID]struct{}
	habitStart map[uuid.UUID]time.Time
	existing   map[uuid.UUID]*completionIndex
}

type completionIndex struct {
	ids   map[uuid.UUID]struct{}
	dates map[int64]struct{}
}

// Import reads an interchange file into the store. Rows are applied in four
// passes (lists, habits, repeat patterns, completions) because each pass
// resolves references against the ones before it. Unreadable or unresolvable
// rows are skipped and reported; a store failure aborts the run and is
// returned as a *PersistenceError together with the partial report.
func (c *Codec) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*Report, error) {
	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	imp := &importer{
		report:     &Report{Atomic: opts.Atomic},
		listIDs:    make(map[uuid.UUID]struct{}),
		habitStart: make(map[uuid.UUID]time.Time),
		existing:   make(map[uuid.UUID]*completionIndex),
	}
	if err := imp.read(r); err != nil {
		return imp.report, err
	}

	if c.snapshot != nil {
		info, err := c.snapshot.Create(ctx, "pre-import")
		if err != nil {
			return imp.report, fmt.Errorf("failed to back up before import: %w", err)
		}
		imp.report.info("Backup written to %s", info.Path)
	}

	passes := []struct {
		name string
		fn   func(context.Context, storage.Repository) error
	}{
		{"lists", imp.importLists},
		{"habits", imp.importHabits},
		{"repeat patterns", imp.importPatterns},
		{"completions", imp.importCompletions},
	}

	if opts.Atomic {
		err = c.store.InTx(ctx, func(tx storage.Repository) error {
			for _, p := range passes {
				if err := p.fn(ctx, tx); err != nil {
					return &PersistenceError{Pass: p.name, Err: err}
				}
			}
			return nil
		})
		if err != nil {
			imp.report.Imported = Counts{}
			imp.report.info("Import rolled back, nothing was saved")
			return imp.report, asPersistence("import", err)
		}
	} else {
		for _, p := range passes {
			if err := ctx.Err(); err != nil {
				return imp.report, err
			}
			committed := imp.report.Imported
			if err := c.store.InTx(ctx, func(tx storage.Repository) error { return p.fn(ctx, tx) }); err != nil {
				// The failed pass was rolled back; only earlier passes count.
				imp.report.Imported = committed
				imp.existing = make(map[uuid.UUID]*completionIndex)
				imp.report.info("Import stopped during the %s pass, earlier passes were kept", p.name)
				return imp.report, asPersistence(p.name, err)
			}
		}
	}

	c.sweepOrphans(ctx, imp.report)

	logger.Info("Import finished", "lists", imp.report.Imported.Lists, "habits", imp.report.Imported.Habits,
		"patterns", imp.report.Imported.Patterns, "completions", imp.report.Imported.Completions,
		"skipped", imp.report.Skipped.Total(), "duplicates", imp.report.Duplicates, "orphans", imp.report.Orphans)

	if c.bus != nil {
		c.bus.Publish()
	}
	return imp.report, nil
}

func asPersistence(pass string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe
	}
	return &PersistenceError{Pass: pass, Err: err}
}

// sweepOrphans reports completions whose habit is gone. Nothing is repaired.
func (c *Codec) sweepOrphans(ctx context.Context, report *Report) {
	orphans, err := c.store.OrphanCompletions(ctx)
	if err != nil {
		logger.Warn("Orphan completion sweep failed", "error", err)
		report.info("Orphan completion sweep failed: %v", err)
		return
	}
	report.Orphans = len(orphans)
	for _, o := range orphans {
		err := fmt.Errorf("completion %s references missing habit %s", o.ID, o.HabitID)
		logger.Warn("Orphan completion", "id", o.ID, "habit", o.HabitID)
		report.warn(err)
	}
}

// read splits the file into per-type rows.
func (imp *importer) read(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				imp.skip("", &ParseError{Line: perr.StartLine, Type: "row", Reason: perr.Err.Error()})
				continue
			}
			return fmt.Errorf("failed to read import file: %w", err)
		}

		num, _ := cr.FieldPos(0)
		if first {
			first = false
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if strings.EqualFold(strings.TrimSpace(rec[0]), Header[colType]) {
				continue
			}
		}

		l := line{num: num, row: row(rec)}
		switch typ := l.row.get(colType); typ {
		case TypeList:
			imp.lists = append(imp.lists, l)
		case TypeHabit:
			imp.habits = append(imp.habits, l)
		case TypePattern:
			imp.patterns = append(imp.patterns, l)
		case TypeCompletion:
			imp.completions = append(imp.completions, l)
		case "":
			// blank line
		default:
			imp.skip("", &ParseError{Line: num, Type: typ, Reason: "unknown row type"})
		}
	}
	imp.report.info("Read %d lists, %d habits, %d repeat patterns and %d completions",
		len(imp.lists), len(imp.habits), len(imp.patterns), len(imp.completions))
	return nil
}

// skip records a skipped row under its entity type.
func (imp *importer) skip(typ string, err error) {
	switch typ {
	case TypeList:
		imp.report.Skipped.Lists++
	case TypeHabit:
		imp.report.Skipped.Habits++
	case TypePattern:
		imp.report.Skipped.Patterns++
	case TypeCompletion:
		imp.report.Skipped.Completions++
	}
	logger.Warn("Skipping import row", "error", err)
	imp.report.warn(err)
}

func (imp *importer) defaulted(l line, field, value, def string) {
	err := &ValidationError{Line: l.num, Type: l.row.get(colType), Field: field, Value: value, Default: def}
	logger.Debug("Defaulting import field", "error", err)
	imp.report.warn(err)
}

func (imp *importer) parseErr(l line, format string, args ...any) {
	typ := l.row.get(colType)
	imp.skip(typ, &ParseError{Line: l.num, Type: typ, Reason: fmt.Sprintf(format, args...)})
}

// intCell parses an integer cell. Empty cells yield def silently.
func (imp *importer) intCell(l line, col int, field string, def int) int {
	s := l.row.get(col)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		imp.defaulted(l, field, s, strconv.Itoa(def))
		return def
	}
	return n
}

// boolCell parses a boolean cell. Empty cells yield def silently.
func (imp *importer) boolCell(l line, col int, field string, def bool) bool {
	s := l.row.get(col)
	if s == "" {
		return def
	}
	b, err := parseBool(s)
	if err != nil {
		imp.defaulted(l, field, s, formatBool(def))
		return def
	}
	return b
}

func (imp *importer) maskCell(l line, col int, field string) []bool {
	s := l.row.get(col)
	bits, bad := parseMask(s)
	if bad > 0 {
		imp.defaulted(l, field, s, fmt.Sprintf("false for %d unreadable entries", bad))
	}
	return bits
}

func (imp *importer) importLists(ctx context.Context, tx storage.Repository) error {
	for _, l := range imp.lists {
		id, err := parseID(l.row.get(colID))
		if err != nil {
			imp.parseErr(l, "%v", err)
			continue
		}

		list := models.HabitList{
			ID:    id,
			Name:  l.row.raw(colName),
			Icon:  DecodeIcon(l.row.get(colIcon)),
			Order: imp.intCell(l, colOrder, "Order", 0),
		}
		if list.Color, err = parseColor(l.row.get(colColor)); err != nil {
			imp.defaulted(l, "Color", l.row.get(colColor), "no color")
		}

		if err := tx.SaveList(ctx, list); err != nil {
			return err
		}
		imp.listIDs[id] = struct{}{}
		imp.report.Imported.Lists++
	}
	imp.report.info("Lists pass: %d imported, %d skipped", imp.report.Imported.Lists, imp.report.Skipped.Lists)
	return nil
}

func (imp *importer) importHabits(ctx context.Context, tx storage.Repository) error {
	for _, l := range imp.habits {
		if len(l.row) < minHabitColumns {
			imp.parseErr(l, "expected at least %d columns, got %d", minHabitColumns, len(l.row))
			continue
		}
		id, err := parseID(l.row.get(colID))
		if err != nil {
			imp.parseErr(l, "%v", err)
			continue
		}
		name := l.row.raw(colName)
		if strings.TrimSpace(name) == "" {
			imp.parseErr(l, "missing name")
			continue
		}
		start, err := parseTime(l.row.get(colStartDate))
		if err != nil {
			imp.parseErr(l, "start date: %v", err)
			continue
		}

		habit := models.Habit{
			ID:             id,
			Name:           name,
			Description:    l.row.raw(colDescription),
			Icon:           DecodeIcon(l.row.get(colIcon)),
			IsBadHabit:     imp.boolCell(l, colIsBadHabit, "IsBadHabit", false),
			IsArchived:     imp.boolCell(l, colIsArchived, "IsArchived", false),
			Order:          imp.intCell(l, colOrder, "Order", 0),
			StartDate:      start,
			IntensityLevel: constants.MinIntensityLevel,
		}
		if habit.Color, err = parseColor(l.row.get(colColor)); err != nil {
			imp.defaulted(l, "Color", l.row.get(colColor), "no color")
		}
		if s := l.row.get(colLastCompletionDate); s != "" {
			if t, err := parseTime(s); err == nil {
				habit.LastCompletionDate = &t
			} else {
				imp.defaulted(l, "LastCompletionDate", s, "none")
			}
		}

		// Intensity has no column; existing habits keep theirs.
		existing, err := tx.GetHabit(ctx, id)
		switch {
		case err == nil:
			habit.IntensityLevel = existing.IntensityLevel
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		listID, err := imp.resolveList(ctx, tx, l)
		if err != nil {
			return err
		}
		habit.ListID = listID

		if err := tx.SaveHabit(ctx, habit); err != nil {
			return err
		}
		imp.habitStart[id] = start
		imp.report.Imported.Habits++
	}
	imp.report.info("Habits pass: %d imported, %d skipped", imp.report.Imported.Habits, imp.report.Skipped.Habits)
	return nil
}

// resolveList returns the habit's list when the reference resolves. Missing
// or unknown references leave the habit standalone.
func (imp *importer) resolveList(ctx context.Context, tx storage.Repository, l line) (uuid.NullUUID, error) {
	s := l.row.get(colHabitListID)
	if s == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := parseID(s)
	if err != nil {
		imp.report.info("Line %d: list reference %q is malformed, habit imported without a list", l.num, s)
		return uuid.NullUUID{}, nil
	}
	if _, ok := imp.listIDs[id]; ok {
		return uuid.NullUUID{UUID: id, Valid: true}, nil
	}
	if _, err := tx.GetList(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			imp.report.info("Line %d: list %s not found, habit imported without a list", l.num, id)
			return uuid.NullUUID{}, nil
		}
		return uuid.NullUUID{}, err
	}
	imp.listIDs[id] = struct{}{}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func (imp *importer) importPatterns(ctx context.Context, tx storage.Repository) error {
	for _, l := range imp.patterns {
		id, err := parseID(l.row.get(colID))
		if err != nil {
			imp.parseErr(l, "%v", err)
			continue
		}
		habitID, err := parseID(l.row.get(colRepeatPatternHabitID))
		if err != nil {
			imp.parseErr(l, "habit reference: %v", err)
			continue
		}
		start, ok := imp.habitStart[habitID]
		if !ok {
			imp.skip(TypePattern, &ReferenceError{Line: l.num, Type: TypePattern, Target: "habit", ID: habitID.String()})
			continue
		}

		pattern := models.RepeatPattern{
			ID:            id,
			HabitID:       habitID,
			FollowUp:      imp.boolCell(l, colFollowUp, "FollowUp", false),
			RepeatsPerDay: imp.intCell(l, colRepeatsPerDay, "RepeatsPerDay", 1),
			Goal:          imp.goal(l),
		}
		if pattern.RepeatsPerDay < 1 {
			imp.defaulted(l, "RepeatsPerDay", l.row.get(colRepeatsPerDay), "1")
			pattern.RepeatsPerDay = 1
		}

		pattern.EffectiveFrom = start
		if s := l.row.get(colEffectiveFrom); s != "" {
			if t, err := parseTime(s); err == nil {
				pattern.EffectiveFrom = t
			} else {
				imp.defaulted(l, "EffectiveFrom", s, "habit start date")
			}
		}
		pattern.CreationDate = pattern.EffectiveFrom
		if s := l.row.get(colCreationDate); s != "" {
			if t, err := parseTime(s); err == nil {
				pattern.CreationDate = t
			} else {
				imp.defaulted(l, "CreationDate", s, "effective date")
			}
		}

		if err := tx.SavePattern(ctx, pattern); err != nil {
			return err
		}
		imp.report.Imported.Patterns++
	}
	imp.report.info("Repeat patterns pass: %d imported, %d skipped", imp.report.Imported.Patterns, imp.report.Skipped.Patterns)
	return nil
}

// goal builds the pattern's goal from GoalType. Unknown types and sub-types
// fall back to the plain "every" variant.
func (imp *importer) goal(l line) models.Goal {
	goalType := l.row.get(colGoalType)
	switch models.GoalKind(strings.ToLower(goalType)) {
	case models.GoalWeekly:
		g := models.WeeklyGoal{
			Pattern:  models.WeeklyPattern(l.row.get(colWeeklyGoalPattern)),
			Weekdays: models.WeekdayMaskFromBools(imp.maskCell(l, colSpecificDaysWeekly, "SpecificDaysWeekly")),
		}
		g.Interval = imp.interval(l, colWeekInterval, "WeekInterval", g.Pattern == models.WeeklyWeekInterval)
		if g.Pattern != models.WeeklyEveryWeek && g.Pattern != models.WeeklyWeekInterval {
			imp.defaulted(l, "WeeklyGoalPattern", string(g.Pattern), string(models.WeeklyEveryWeek))
			g.Pattern = models.WeeklyEveryWeek
		}
		return g
	case models.GoalMonthly:
		g := models.MonthlyGoal{
			Pattern: models.MonthlyPattern(l.row.get(colMonthlyGoalPattern)),
			Days:    models.MonthDayMaskFromBools(imp.maskCell(l, colSpecificDaysMonthly, "SpecificDaysMonthly")),
		}
		g.Interval = imp.interval(l, colMonthInterval, "MonthInterval", g.Pattern == models.MonthlyMonthInterval)
		if g.Pattern != models.MonthlyEveryMonth && g.Pattern != models.MonthlyMonthInterval {
			imp.defaulted(l, "MonthlyGoalPattern", string(g.Pattern), string(models.MonthlyEveryMonth))
			g.Pattern = models.MonthlyEveryMonth
		}
		return g
	case models.GoalDaily:
	default:
		imp.defaulted(l, "GoalType", goalType, string(models.GoalDaily))
	}

	g := models.DailyGoal{
		Pattern: models.DailyPattern(l.row.get(colDailyGoalPattern)),
		Days:    models.NewRotationMask(imp.maskCell(l, colSpecificDaysDaily, "SpecificDaysDaily")),
	}
	g.Interval = imp.interval(l, colDaysInterval, "DaysInterval", g.Pattern == models.DailyEveryXDays)
	switch g.Pattern {
	case models.DailyEveryDay, models.DailyEveryXDays, models.DailySpecificDays:
	default:
		imp.defaulted(l, "DailyGoalPattern", string(g.Pattern), string(models.DailyEveryDay))
		g.Pattern = models.DailyEveryDay
	}
	return g
}

// interval reads an interval cell. Interval variants need a value of at
// least 1; other variants keep whatever positive value is present.
func (imp *importer) interval(l line, col int, field string, required bool) int {
	n := imp.intCell(l, col, field, 0)
	if n >= 1 {
		return n
	}
	if required {
		imp.defaulted(l, field, l.row.get(col), "1")
		return 1
	}
	return 0
}

func (imp *importer) importCompletions(ctx context.Context, tx storage.Repository) error {
	for _, l := range imp.completions {
		id, err := parseID(l.row.get(colID))
		if err != nil {
			imp.parseErr(l, "%v", err)
			continue
		}
		habitID, err := parseID(l.row.get(colRepeatPatternHabitID))
		if err != nil {
			imp.parseErr(l, "habit reference: %v", err)
			continue
		}
		if _, ok := imp.habitStart[habitID]; !ok {
			h, err := tx.GetHabit(ctx, habitID)
			if errors.Is(err, storage.ErrNotFound) {
				imp.skip(TypeCompletion, &ReferenceError{Line: l.num, Type: TypeCompletion, Target: "habit", ID: habitID.String()})
				continue
			}
			if err != nil {
				return err
			}
			imp.habitStart[habitID] = h.StartDate
		}

		date, ok := imp.completionDate(l)
		if !ok {
			imp.parseErr(l, "no parseable completion date")
			continue
		}

		index, err := imp.index(ctx, tx, habitID)
		if err != nil {
			return err
		}
		if index.has(id, date) {
			imp.report.Duplicates++
			continue
		}

		completion := models.Completion{
			ID:        id,
			HabitID:   habitID,
			Date:      date,
			LoggedAt:  date,
			Duration:  imp.intCell(l, colCompletionDuration, "CompletionDuration", 0),
			Completed: imp.boolCell(l, colCompletionStatus, "CompletionStatus", true),
		}
		if completion.Duration < 0 {
			imp.defaulted(l, "CompletionDuration", l.row.get(colCompletionDuration), "0")
			completion.Duration = 0
		}
		if t, err := parseTime(l.row.get(colCreationDate)); err == nil {
			completion.LoggedAt = t
		}

		if err := tx.SaveCompletion(ctx, completion); err != nil {
			return err
		}
		index.ids[id] = struct{}{}
		imp.report.Imported.Completions++
	}
	imp.report.info("Completions pass: %d imported, %d skipped, %d duplicates",
		imp.report.Imported.Completions, imp.report.Skipped.Completions, imp.report.Duplicates)
	return nil
}

// completionDate reads CompletionDate, falling back to the first date found
// anywhere in the row.
func (imp *importer) completionDate(l line) (time.Time, bool) {
	s := l.row.get(colCompletionDate)
	if t, err := parseTime(s); err == nil {
		return t, true
	}
	t, ok := l.row.firstDate()
	if ok {
		imp.defaulted(l, "CompletionDate", s, t.Format(constants.InterchangeTimeFormat))
	}
	return t, ok
}

// index returns the completions the habit had before this pass touched it.
// Records added by the current import are not indexed, so same-day repeats
// in one file all land, even with identical dates. This is a behavior
// change from skipping every row whose (habit, date) pair was already seen:
// a habit with several repeats per day exports one row per repeat, and
// collapsing them would lose all but the first. Rows with an ID already in
// the store are still skipped, so importing the same file twice adds nothing.
func (imp *importer) index(ctx context.Context, tx storage.Repository, habitID uuid.UUID) (*completionIndex, error) {
	if idx, ok := imp.existing[habitID]; ok {
		return idx, nil
	}
	stored, err := tx.Completions(ctx, storage.CompletionFilter{HabitID: uuid.NullUUID{UUID: habitID, Valid: true}})
	if err != nil {
		return nil, err
	}
	idx := &completionIndex{
		ids:   make(map[uuid.UUID]struct{}, len(stored)),
		dates: make(map[int64]struct{}, len(stored)),
	}
	for _, c := range stored {
		idx.ids[c.ID] = struct{}{}
		idx.dates[c.Date.UnixNano()] = struct{}{}
	}
	imp.existing[habitID] = idx
	return idx, nil
}

func (idx *completionIndex) has(id uuid.UUID, date time.Time) bool {
	if _, ok := idx.ids[id]; ok {
		return true
	}
	_, ok := idx.dates[date.UnixNano()]
	return ok
}
