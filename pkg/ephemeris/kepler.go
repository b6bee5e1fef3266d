package ephemeris

import "math"

// orbitalElements are mean Keplerian elements at J2000 and their rates per
// Julian century (JPL "Approximate Positions of the Planets", 1800-2050 AD).
type orbitalElements struct {
	a, aRate       float64 // semi-major axis, au
	e, eRate       float64 // eccentricity
	i, iRate       float64 // inclination, deg
	l, lRate       float64 // mean longitude, deg
	peri, periRate float64 // longitude of perihelion, deg
	node, nodeRate float64 // longitude of ascending node, deg
}

var (
	elementsMercury = orbitalElements{
		0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081,
	}
	elementsVenus = orbitalElements{
		0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418,
	}
	elementsEarthMoon = orbitalElements{
		1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
		100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0,
	}
	elementsMars = orbitalElements{
		1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343,
	}
	elementsJupiter = orbitalElements{
		5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106,
	}
	elementsSaturn = orbitalElements{
		9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794,
	}
	elementsUranus = orbitalElements{
		19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589,
	}
	elementsNeptune = orbitalElements{
		30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664,
	}
	elementsPluto = orbitalElements{
		39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482,
	}
)

// heliocentric returns J2000 ecliptic rectangular coordinates in au at T
// Julian centuries from J2000.
func (el orbitalElements) heliocentric(t float64) (x, y, z float64) {
	a := el.a + el.aRate*t
	e := el.e + el.eRate*t
	inc := radians(el.i + el.iRate*t)
	l := el.l + el.lRate*t
	peri := el.peri + el.periRate*t
	node := el.node + el.nodeRate*t

	argPeri := radians(peri - node)
	meanAnomaly := radians(normalize(l-peri+180) - 180)
	ecc := solveKepler(meanAnomaly, e)

	xp := a * (math.Cos(ecc) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ecc)

	cw, sw := math.Cos(argPeri), math.Sin(argPeri)
	cn, sn := math.Cos(radians(node)), math.Sin(radians(node))
	ci, si := math.Cos(inc), math.Sin(inc)

	x = (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y = (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	z = (sw*si)*xp + (cw*si)*yp
	return x, y, z
}

// solveKepler solves E - e*sin(E) = M for the eccentric anomaly, in radians.
func solveKepler(m, e float64) float64 {
	ecc := m + e*math.Sin(m)
	for i := 0; i < 30; i++ {
		delta := (ecc - e*math.Sin(ecc) - m) / (1 - e*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return ecc
}

// geocentricLongitude is the J2000 ecliptic longitude of a planet seen from Earth.
func geocentricLongitude(planet orbitalElements, t float64) float64 {
	px, py, _ := planet.heliocentric(t)
	ex, ey, _ := elementsEarthMoon.heliocentric(t)
	return normalize(degrees(math.Atan2(py-ey, px-ex)))
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }

func normalize(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
