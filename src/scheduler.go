package sdr

// updateSearch is the acquisition scheduler of spec.md §4.4, run once per
// receiver tick. At most one channel may be in SEARCH globally. Grounded on
// original_source/src/sdr_rcv.c's rcv_update_srch/re_acq/assist_acq, with
// the re-acquisition predicate corrected per the Open Question in spec.md
// §9: the source's `rcv->ix*T_CYC - ch->time + T_REACQ` evaluates a sum as
// a boolean and is always true; the intended form,
// `rcv->ix*T_CYC - ch->time <= T_REACQ`, is what this implementation uses.
func (r *Receiver) updateSearch(ix int64) {
	ich := int(r.ich.Load())
	nch := len(r.workers)
	if nch == 0 {
		return
	}
	if ich >= 0 && ich < nch && r.workers[ich].ch.State() == StateSEARCH {
		return
	}
	for i := 0; i < nch; i++ {
		ich = (ich + 1) % nch
		ch := r.workers[ich].ch
		if ch.State() != StateIDLE {
			continue
		}
		if r.reAcq(ix, ch) || r.assistAcq(ch) || ch.T <= ShortCodeT {
			ch.SetState(StateSEARCH)
			r.ich.Store(int32(ich))
			return
		}
	}
	r.ich.Store(int32(ich))
}

// reAcq implements spec.md §4.4 rule 1: a channel that locked for at least
// MinLock seconds within the last TReacq seconds is seeded with its last
// known Doppler and becomes the next search candidate.
func (r *Receiver) reAcq(ix int64, ch *Channel) bool {
	if float64(ch.Lock())*ch.T >= MinLock && float64(ix)*TCyc-ch.Time() <= TReacq {
		ch.SetFdExt(ch.Fd())
		return true
	}
	return false
}

// assistAcq implements spec.md §4.4 rule 2: if some other channel is
// currently LOCKed on the same satellite for at least MinLock seconds, seed
// this channel's hint by scaling the donor's Doppler by the ratio of
// carrier frequencies.
func (r *Receiver) assistAcq(ch *Channel) bool {
	for _, w := range r.workers {
		donor := w.ch
		if donor.Sat() != ch.Sat() {
			continue
		}
		if donor.State() != StateLOCK {
			continue
		}
		if float64(donor.Lock())*donor.T < MinLock {
			continue
		}
		ch.SetFdExt(donor.Fd() * ch.Fc / donor.Fc)
		return true
	}
	return false
}
