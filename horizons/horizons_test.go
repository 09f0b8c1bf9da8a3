package horizons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gravitysim/orbitplane"
	"github.com/stretchr/testify/require"
)

const europaAnswer = `API VERSION: 1.2
API SOURCE: NASA/JPL Horizons API

*******************************************************************************
 Revised: Jul 31, 2013             Europa / (Jupiter)                       502

 SATELLITE PHYSICAL PROPERTIES:
  Mean Radius (km)       = 1560.8 +- 0.5   Density (g/cm^3) =  3.013 +- 0.005
  Mass (10^22 kg)        =   4.799844      Geometric Albedo =  0.67 +- 0.03
  GM (km^3/s^2)          = 3202.739+-.009  V(1,0)           = -1.41

 SATELLITE ORBITAL DATA:
  Semi-major axis, a (km)= 671.1 (10^3)  Orbital period   = 3.551810 d
  Eccentricity, e        =  0.0094       Inclination, i  (deg) =  0.466
*******************************************************************************
Ephemeris / API_USER Sun Jan 18 00:00:00 2026 Pasadena, USA      / Horizons
*******************************************************************************
Target body name: Europa (502)                    {source: jup365_merged}
Center body name: Jupiter (599)                   {source: jup365_merged}
Center-site name: BODY CENTER
*******************************************************************************
$$SOE
2461058.500000000 = A.D. 2026-Jan-18 00:00:00.0000 TDB 
 X = 4.123456789012345E+05 Y =-4.876543210987654E+05 Z =-1.234567890123456E+04
 VX= 9.876543210987654E+00 VY= 8.123456789012345E+00 VZ= 2.345678901234567E-01
 LT= 2.131234567890123E+00 RG= 6.389012345678901E+05 RR=-1.234567890123456E-02
2461059.500000000 = A.D. 2026-Jan-19 00:00:00.0000 TDB 
 X = 1.000000000000000E+00 Y = 2.000000000000000E+00 Z = 3.000000000000000E+00
 VX= 4.000000000000000E+00 VY= 5.000000000000000E+00 VZ= 6.000000000000000E+00
 LT= 2.131234567890123E+00 RG= 6.389012345678901E+05 RR=-1.234567890123456E-02
$$EOE
*******************************************************************************
`

func TestQueryValues(t *testing.T) {
	q := Query{Center: "500@5", Command: "502", Start: "2026-01-18", Stop: "2026-02-17", Step: "1 DAYS"}
	vals := q.Values()
	require.Equal(t, "text", vals.Get("format"))
	require.Equal(t, "'500@5'", vals.Get("CENTER"))
	require.Equal(t, "'502'", vals.Get("COMMAND"))
	require.Equal(t, "'1 DAYS'", vals.Get("STEP_SIZE"))
	require.Equal(t, "'3'", vals.Get("VEC_TABLE"))
	require.Equal(t, "'KM-S'", vals.Get("OUT_UNITS"))
	require.Error(t, Query{Command: "502"}.Validate())

	enc := q.Encode()
	require.True(t, strings.HasPrefix(enc, "format=text&"), enc)
	require.Contains(t, enc, "&STEP_SIZE='1%20DAYS'")
	require.Contains(t, enc, "&CENTER='500%405'")
	require.Contains(t, enc, "&COMMAND='502'")
	require.NotContains(t, enc, "+")
	parsed, err := url.ParseQuery(enc)
	require.NoError(t, err)
	require.Equal(t, vals, parsed)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("COMMAND") != "'502'" || q.Get("CENTER") != "'500@5'" || q.Get("EPHEM_TYPE") != "'VECTORS'" {
			http.Error(w, "bad query "+r.URL.RawQuery, http.StatusBadRequest)
			return
		}
		w.Write([]byte(europaAnswer))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(0))
	text, err := c.Fetch(context.Background(), Query{Center: "500@5", Command: "502", Start: "2026-01-18", Stop: "2026-01-19", Step: "1 DAYS"})
	require.NoError(t, err)
	require.Equal(t, europaAnswer, text)

	_, err = c.Fetch(context.Background(), Query{Center: "500@5", Command: "999"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "400")

	_, err = c.Fetch(context.Background(), Query{Command: "502"})
	require.Error(t, err)
}

func TestFetchRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(europaAnswer))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(3), WithRetryWait(time.Millisecond, 2*time.Millisecond), WithTimeout(time.Second))
	text, err := c.Fetch(context.Background(), Query{Center: "500@5", Command: "502"})
	require.NoError(t, err)
	require.Equal(t, europaAnswer, text)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, -10)
	c = NewClient(srv.URL, WithRetries(1), WithRetryWait(time.Millisecond, 2*time.Millisecond))
	_, err = c.Fetch(context.Background(), Query{Center: "500@5", Command: "502"})
	require.Error(t, err)
}

func TestFirstState(t *testing.T) {
	st, err := FirstState(europaAnswer)
	require.NoError(t, err)
	require.Equal(t, "Europa (502)", st.Target)
	require.Equal(t, 2461058.5, st.JD)
	require.Len(t, st.Lines, 3)
	require.True(t, time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC).Equal(st.Epoch().Round(time.Second)), st.Epoch().String())

	_, err = FirstState("API ERROR: no such object")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such object")

	_, err = FirstState("$$SOE\n$$EOE")
	require.Error(t, err)
}

func TestMass(t *testing.T) {
	mass, err := Mass(europaAnswer)
	require.NoError(t, err)
	require.Equal(t, 4.799844e22, mass)

	cases := map[string]float64{
		" PHYSICAL DATA (updated 2025-Jan-19):\n  Mass x10^22 (kg)      =     4.799844   Geometric Albedo      =  0.67\n": 4.799844e22,
		" GEOPHYSICAL PROPERTIES (revised May 9, 2022):\n Vol. Mean Radius (km)    = 6371.01+-0.02   Mass x10^24 (kg)= 5.97219+-0.0006\n": 5.97219e24,
		" GEOPHYSICAL PROPERTIES:\n Mass x 10^22 (g)      = 189818722 +- 8817  Density (g/cm^3)  = 1.3262 +- .0003\n": 1.89818722e27,
		" GEOPHYSICAL DATA:\n Mass ratio (Sun/Mars)  = 3098703.59  Mass (10^23 kg)   = 6.4171\n": 6.4171e23,
	}
	for text, exp := range cases {
		mass, err := Mass(text)
		require.NoError(t, err, text)
		require.InEpsilon(t, exp, mass, 1e-15, text)
	}

	for _, text := range []string{
		"",
		" PHYSICAL DATA:\n  Mean radius (km) = 1560.8\n",
		// Outside the physical data.
		" ORBITAL DATA:\n  Mass (10^22 kg) = 4.8\n",
		// The block ends at the first blank line.
		" PHYSICAL DATA:\n  Density = 3\n\n Mass (10^22 kg) = 4.8\n",
	} {
		_, err := Mass(text)
		require.Error(t, err, text)
	}
}

func TestExtractRecord(t *testing.T) {
	record, err := ExtractRecord(europaAnswer)
	require.NoError(t, err)
	require.Contains(t, record, "MASS = 4.799844e+22\n")
	_, err = ExtractRecord(strings.Replace(europaAnswer, "Mass (10^22 kg)", "Mean density", 1))
	require.Error(t, err)

	record, err = ExtractRecordWithMass(europaAnswer, 4.8e22)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(record, "# Europa (502)\n# epoch: 2026-01-18 00:00:00 TDB (JD 2461058.5)\n"), record)
	bodies, err := orbitplane.ParseEphemerisString(record, orbitplane.DefaultScale)
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	require.Equal(t, 4.8e22, bodies[0].Mass)
	require.InDelta(t, 4.123456789012345e8, bodies[0].Position.X, 1e-3)
	require.InDelta(t, 8123.456789012345, bodies[0].Velocity.Y, 1e-9)

	_, err = ExtractRecordWithMass(europaAnswer, -1)
	require.Error(t, err)
}
