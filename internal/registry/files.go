package registry

func track(name string, size, textures, meshes int) File {
	return File{
		Name:   name,
		Path:   "TRACKS/" + name + ".UBR",
		Group:  GroupTrack,
		Skybox: true,
		Expect: Expect{Size: size, Textures: textures, Meshes: meshes},
	}
}

func car(name string, size, textures int) File {
	return File{
		Name:   name,
		Path:   "SOLOCARS/" + name + ".UBR",
		Group:  GroupCar,
		Expect: Expect{Size: size, Textures: textures, Meshes: -1},
	}
}

func menu(name string, diffuse, paletted, size, textures int) File {
	return File{
		Name:  name,
		Path:  "FLASH/" + name + "/" + name + ".UBR",
		Group: GroupMenu,
		Menu: []MenuList{
			{Address: diffuse},
			{Address: paletted, Paletted: true},
		},
		Expect: Expect{Size: size, Textures: textures, Meshes: 0},
	}
}

// Default returns the registry of every file shipped with the game.
func Default() *Registry {
	winbowl := track("WINBOWL", 0x1DF2E0, 54, 1287)
	winbowl.Skybox = false

	return New([]File{
		track("AIRPORT", 0x641710, 283, 4233),
		track("BMOVIE", 0x2C5890, 145, 1090),
		track("BRON_2ND", 0x826890, 312, 4116),
		track("BRONX", 0x8DD3B0, 351, 5415),
		track("CHIN_2ND", 0x790A90, 334, 5191),
		track("CHINATWN", 0x7B1EB0, 317, 5379),
		track("CONSTR", 0x59CB90, 187, 4002),
		track("DAM", 0x9AB1D0, 183, 6719),
		track("ENGINE", 0x30FC10, 65, 1760),
		track("GLADIATO", 0x44B680, 84, 1924),
		track("GODS", 0x247F50, 42, 829),
		track("JUSTICE", 0x3EF860, 128, 1709),
		track("REFINERY", 0x8C8610, 217, 6037),
		track("SHIPYARD", 0x6F82A0, 272, 4779),
		track("STEELWRK", 0x4ECAB0, 147, 3534),
		track("SUBWAY", 0x67F470, 194, 4800),
		track("VEGA_2ND", 0x88CBC0, 417, 7436),
		track("VEGAS", 0x6B97C0, 364, 5531),
		winbowl,

		car("AMSTAR", 0x00040480, 1),
		car("BLACK", 0x00048890, 1),
		car("CLOWN", 0x000428D0, 1),
		car("DEVIL", 0x00046210, 1),
		car("FLAME", 0x00041E20, 1),
		car("FLASH", 0x00049A50, 1),
		car("FORMULA", 0x0004CAC0, 1),
		car("GIRL", 0x00047BB0, 1),
		car("MIDNIGH", 0x0004A460, 1),
		car("MONSTER", 0x00046020, 1),
		car("PEPSI", 0x00045650, 1),
		car("RIVER", 0x000490A0, 1),
		car("SHARK", 0x00047630, 1),
		car("SKULL", 0x0004B100, 1),
		car("SNAKE", 0x0004A060, 1),
		car("STANG", 0x00048130, 1),
		car("STAR", 0x0003C0B0, 1),
		car("TIGER", 0x00048F30, 1),
		car("UNION", 0x000428C0, 1),
		car("VOODOO", 0x00046520, 2),
		car("ZACE", 0x0004A2D0, 2),
		car("ZGMC", 0x0004FEF0, 1),
		car("ZHOTTIE", 0x00047690, 2),
		car("ZPOLICE", 0x0004C990, 2),
		car("ZTAXI", 0x0004E340, 1),

		// FONT.UBR has no decoder yet; it is listed so it can be classified.
		{Name: "FONT", Path: "FONT.UBR", Group: GroupShared, Expect: Expect{Meshes: -1, Textures: -1}},
		{Name: "INGAME", Path: "INGAME.UBR", Group: GroupShared, Expect: Expect{Size: 0x00196D00, Textures: 102, Meshes: 0}},
		{Name: "SPRITES", Path: "SPRITES.UBR", Group: GroupShared, Expect: Expect{Size: 0x000912E0, Textures: 67, Meshes: 0}},

		menu("DD4FRONT", 0x003BCFD0, 0x0055D7C0, 0xA30F40, 985),
		menu("DD4GAME", 0x0008D9F0, 0x0017D3C0, 0x1F4B60, 314),
		menu("DD4START", 0x0009F890, 0x002222E0, 0x2BC160, 326),
	})
}
